package llm

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// Cross-cutting concerns are applied via Middleware.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32, maxTokens int) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if k := strings.TrimSpace(apiKey); k != "" {
		cfg.APIKey = k
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &GeminiClient{cli: cli, model: model, temperature: temperature, maxTokens: int32(maxTokens)}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}
