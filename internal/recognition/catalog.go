package recognition

import (
	_ "embed"
	"strings"

	"github.com/horusauth/horus/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed gestures.yaml
var gesturesYAML []byte

type catalogFile struct {
	Gestures []string `yaml:"gestures"`
}

var catalog = loadCatalog()

func loadCatalog() []string {
	var cf catalogFile
	if err := yaml.Unmarshal(gesturesYAML, &cf); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded gestures.yaml: " + err.Error())
	}
	return cf.Gestures
}

// Catalog returns the names of all recognizable gestures.
func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// NormalizeGesture maps a raw classification answer onto the catalog.
// Anything outside the catalog becomes the UNKNOWN sentinel.
func NormalizeGesture(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	for _, g := range catalog {
		if g == cleaned {
			return g
		}
	}
	return constants.GestureUnknown
}
