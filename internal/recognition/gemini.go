package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/horusauth/horus/internal/constants"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) MatchFace(ctx context.Context, reference, probe []byte) (bool, error) {
	referenceData, err := ResizeImage(reference, constants.MaxImageSize)
	if err != nil {
		return false, fmt.Errorf("failed to prepare reference image: %w", err)
	}
	probeData, err := ResizeImage(probe, constants.MaxImageSize)
	if err != nil {
		return false, fmt.Errorf("failed to prepare probe image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildFaceMatchPrompt() + "\n\nThe first image is the stored reference, the second is the probe."},
				{InlineData: &genai.Blob{Data: referenceData, MIMEType: "image/jpeg"}},
				{InlineData: &genai.Blob{Data: probeData, MIMEType: "image/jpeg"}},
			},
		},
	}

	var result faceMatchResult
	if err := p.generateJSON(ctx, contents, &result); err != nil {
		return false, err
	}
	return result.Match, nil
}

func (p *GeminiProvider) ClassifyGesture(ctx context.Context, image []byte) (string, error) {
	imageData, err := ResizeImage(image, constants.MaxImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to prepare gesture image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildGesturePrompt()},
				{InlineData: &genai.Blob{Data: imageData, MIMEType: "image/jpeg"}},
			},
		},
	}

	var result gestureResult
	if err := p.generateJSON(ctx, contents, &result); err != nil {
		return "", err
	}
	if result.Gesture == "" {
		return constants.GestureUnknown, nil
	}
	return NormalizeGesture(result.Gesture), nil
}

// generateJSON runs a generation in JSON mode and unmarshals the answer into
// target, feeding parse errors back to the model for a bounded retry.
func (p *GeminiProvider) generateJSON(ctx context.Context, contents []*genai.Content, target any) error {
	const maxRetries = 3

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return fmt.Errorf("gemini API error: %w", err)
		}

		content := result.Text()
		if content == "" {
			return errors.New("no response from Gemini")
		}
		lastResponse = content

		if err := json.Unmarshal([]byte(content), target); err != nil {
			lastError = err
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again.", err)}},
				},
			)
			continue
		}

		return nil
	}

	return fmt.Errorf("failed to parse response JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
