// Package safety screens submitted images and drafts listing suggestions
// with a multimodal model.
package safety

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ucycle/pkg/imagedata"

	"google.golang.org/genai"
)

// Prompter sends one image plus instructions to a model and returns its text
// answer.
type Prompter interface {
	Prompt(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error)
}

type GeminiPrompter struct {
	client *genai.Client
	model  string
}

func NewGeminiPrompter(ctx context.Context, apiKey, model string) (*GeminiPrompter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiPrompter{client: client, model: model}, nil
}

func (p *GeminiPrompter) Prompt(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}

func decodeImage(payload string) ([]byte, string, error) {
	data, mimeType, err := imagedata.Decode(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return data, mimeType, nil
}
