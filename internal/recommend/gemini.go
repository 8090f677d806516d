package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// detectTagsPrompt asks the vision model for food tags on an uploaded image.
const detectTagsPrompt = "Analyze the food items in this image and return a comma-separated list of descriptive tags. " +
	"Examples: 'pizza, cheese, tomato', 'burger, fries, soda'. " +
	"If no food is detected, or if the image does not contain recognizable food items, return an empty string or 'No food detected'."

// GeminiOracle is the Gemini-backed ranking oracle. It also serves the
// image-to-food-tags call, which shares the same client.
type GeminiOracle struct {
	client *genai.Client
	model  string
}

// NewGeminiOracle creates a Gemini client for the given API key and model name
func NewGeminiOracle(ctx context.Context, apiKey, model string) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiOracle{client: client, model: model}, nil
}

// Rank sends the ranking prompt and returns the model's raw text. The model
// is asked for a JSON response; parsing is left to the orchestrator.
func (o *GeminiOracle) Rank(ctx context.Context, prompt string) (string, error) {
	model := o.client.GenerativeModel(o.model)
	model.ResponseMIMEType = "application/json"

	response, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(response), nil
}

// DetectFoodTags runs the vision prompt on an uploaded image and returns the
// detected tags. "No food detected" normalizes to an empty list.
func (o *GeminiOracle) DetectFoodTags(ctx context.Context, mimeType string, image []byte) ([]string, error) {
	model := o.client.GenerativeModel(o.model)

	response, err := model.GenerateContent(ctx,
		genai.Text(detectTagsPrompt),
		genai.ImageData(imageFormat(mimeType), image))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	raw := strings.TrimSpace(responseText(response))
	if raw == "" || strings.EqualFold(raw, "no food detected") {
		return []string{}, nil
	}

	tags := make([]string, 0)
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.EqualFold(tag, "no food detected") {
			continue
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Close releases the underlying client.
func (o *GeminiOracle) Close() error {
	return o.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(response *genai.GenerateContentResponse) string {
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	return builder.String()
}

// imageFormat converts a MIME type like "image/png" into the bare format
// genai.ImageData expects.
func imageFormat(mimeType string) string {
	format := strings.ToLower(strings.TrimSpace(mimeType))
	format = strings.TrimPrefix(format, "image/")
	if format == "" {
		return "jpeg"
	}
	return format
}
