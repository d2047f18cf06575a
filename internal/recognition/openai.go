package recognition

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/horusauth/horus/internal/constants"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

//go:embed prompts/face_match.txt
var faceMatchPrompt string

//go:embed prompts/gesture_classify.txt
var gestureClassifyPrompt string

const chatModel = openai.ChatModelGPT4_1Mini

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) Name() string {
	return chatModel
}

func (p *OpenAIProvider) MatchFace(ctx context.Context, reference, probe []byte) (bool, error) {
	referenceURL, err := imageDataURL(reference)
	if err != nil {
		return false, fmt.Errorf("failed to prepare reference image: %w", err)
	}
	probeURL, err := imageDataURL(probe)
	if err != nil {
		return false, fmt.Errorf("failed to prepare probe image: %w", err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(buildFaceMatchPrompt()),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart("The first image is the stored reference, the second is the probe."),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    referenceURL,
							Detail: "low",
						}),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    probeURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var result faceMatchResult
	if err := p.completeJSON(ctx, messages, &result); err != nil {
		return false, err
	}
	return result.Match, nil
}

func (p *OpenAIProvider) ClassifyGesture(ctx context.Context, image []byte) (string, error) {
	imageURL, err := imageDataURL(image)
	if err != nil {
		return "", fmt.Errorf("failed to prepare gesture image: %w", err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(buildGesturePrompt()),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart("Name the gesture shown in this image."),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var result gestureResult
	if err := p.completeJSON(ctx, messages, &result); err != nil {
		return "", err
	}
	if result.Gesture == "" {
		return constants.GestureUnknown, nil
	}
	return NormalizeGesture(result.Gesture), nil
}

// completeJSON runs a chat completion in JSON mode and unmarshals the answer
// into target, feeding parse errors back to the model for a bounded retry.
func (p *OpenAIProvider) completeJSON(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, target any) error {
	const maxRetries = 3

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(100),
		})
		if err != nil {
			return fmt.Errorf("OpenAI API error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return errors.New("no response from OpenAI")
		}

		content := resp.Choices[0].Message.Content
		lastResponse = content

		if err := json.Unmarshal([]byte(content), target); err != nil {
			lastError = err
			messages = append(messages,
				openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						Content: openai.ChatCompletionAssistantMessageParamContentUnion{
							OfString: openai.String(content),
						},
					},
				},
				openai.ChatCompletionMessageParamUnion{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{
							OfString: openai.String(fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again.", err)),
						},
					},
				},
			)
			continue
		}

		return nil
	}

	return fmt.Errorf("failed to parse response JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

// imageDataURL resizes an image and encodes it as a base64 JPEG data URI.
func imageDataURL(data []byte) (string, error) {
	resized, err := ResizeImage(data, constants.MaxImageSize)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resized), nil
}
