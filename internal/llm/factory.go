package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options selects and tunes the model client used by every stage.
type Options struct {
	Provider    string // gemini | groq | fake
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int

	Timeout       time.Duration
	RetryAttempts int
	RetryBase     time.Duration
	RPS           float64
	Burst         int
}

// New builds the provider client and applies the standard middleware chain:
// logging outermost, then rate limiting, retry and the per-call timeout.
func New(ctx context.Context, opts Options, logger *zap.Logger) (LLMClient, error) {
	var inner LLMClient
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "gemini":
		model := opts.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		cli, err := NewGeminiClient(ctx, opts.APIKey, model, opts.Temperature, opts.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("llm: gemini client: %w", err)
		}
		inner = cli
	case "groq":
		model := opts.Model
		if model == "" {
			model = "llama-3.3-70b-versatile"
		}
		inner = NewGroqClient(opts.APIKey, model, opts.Temperature, opts.MaxTokens)
	case "fake":
		inner = NewFakeClient()
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
	return Wrap(inner,
		WithLogging(logger),
		RateLimit(opts.RPS, opts.Burst),
		Retry(opts.RetryAttempts, opts.RetryBase),
		Timeout(opts.Timeout),
	), nil
}
