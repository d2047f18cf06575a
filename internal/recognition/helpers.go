package recognition

import (
	"fmt"
	"strings"
)

// buildFaceMatchPrompt returns the embedded face comparison prompt.
func buildFaceMatchPrompt() string {
	return faceMatchPrompt
}

// buildGesturePrompt builds the classification prompt with the gesture catalog
// appended. The model must answer with a catalog name or UNKNOWN.
func buildGesturePrompt() string {
	var b strings.Builder
	b.WriteString(gestureClassifyPrompt)
	b.WriteString("\nRecognizable gestures:\n")
	for _, g := range catalog {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	return b.String()
}
