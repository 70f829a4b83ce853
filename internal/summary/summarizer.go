package summary

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrDisabled is returned by NoopSummarizer.
var ErrDisabled = errors.New("summary service not configured")

// Summarizer turns a prompt into commentary text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// GeminiSummarizer calls the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

var _ Summarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer creates a client for the Gemini developer API.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

// NoopSummarizer is used when no API key is configured.
type NoopSummarizer struct{}

func (NoopSummarizer) Summarize(context.Context, string) (string, error) {
	return "", ErrDisabled
}
