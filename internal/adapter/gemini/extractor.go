package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Extractor implements extract.Generator on top of the Gemini generation API.
type Extractor struct {
	client *genai.Client
	model  string
}

func NewExtractor(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Extractor{client: client, model: model}, nil
}

func (e *Extractor) Generate(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "generating content", "model", e.model, "prompt_length", len(prompt))

	m := e.client.GenerativeModel(e.model)
	res, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err)
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty generation response")
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	return b.String(), nil
}

func (e *Extractor) Close() error {
	return e.client.Close()
}
