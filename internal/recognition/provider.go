package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/horusauth/horus/internal/config"
)

// Provider defines the interface for vision recognition backends.
//
// MatchFace reports whether the probe image shows the same person as the
// reference image. A (false, nil) return is a negative match; a non-nil error
// means the backend itself failed and the call is safe to retry unchanged.
//
// ClassifyGesture names the hand gesture shown in the image. Images that do
// not show a catalog gesture classify as constants.GestureUnknown.
type Provider interface {
	Name() string
	MatchFace(ctx context.Context, reference, probe []byte) (bool, error)
	ClassifyGesture(ctx context.Context, image []byte) (string, error)
}

// NewProvider builds the provider selected by cfg.Recognition.Provider.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.Recognition.Provider) {
	case "", "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		return NewOpenAIProvider(cfg.OpenAI.Token), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		return NewGeminiProvider(ctx, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unknown recognition provider %q", cfg.Recognition.Provider)
	}
}

// faceMatchResult is the JSON shape both providers request for face comparison.
type faceMatchResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
}

// gestureResult is the JSON shape both providers request for gesture classification.
type gestureResult struct {
	Gesture string `json:"gesture"`
}
