package analysis

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"elite_crm_backend/platform/apperr"
	"elite_crm_backend/platform/config"
)

// Completer is the single-shot LLM surface the coaching flow needs. The
// model is expected to honor JSON output mode.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// GeminiClient implements Completer against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient returns nil when no API key is configured; the coaching
// branch is disabled in that case.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	apiKey := cfg.GetGeminiAPIKey()
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.GetGeminiModel()}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(0.2)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       &temperature,
		},
	)
	if err != nil {
		return "", apperr.Unavailable("gemini completion failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", apperr.ParseFailure("gemini returned an empty completion", nil)
	}
	return text, nil
}
