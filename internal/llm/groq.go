package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible).
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http        *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float32
	maxTokens   int
}

// NewGroqClient creates a Groq client. If apiKey is empty, it falls back to GROQ_API_KEY env var.
func NewGroqClient(apiKey, model string, temperature float32, maxTokens int) *GroqClient {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &GroqClient{
		http:        &http.Client{Timeout: 60 * time.Second},
		apiKey:      apiKey,
		model:       model,
		baseURL:     "https://api.groq.com/openai/v1/chat/completions",
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (g *GroqClient) Name() string { return "Groq:" + g.model }
func (g *GroqClient) Close() error { return nil }

type groqChatReq struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *GroqClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	msgs := make([]groqMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, groqMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, groqMessage{Role: "user", Content: prompt})
	b, err := json.Marshal(groqChatReq{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", NewPermanentError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", NewPermanentError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("groq: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", NewPermanentError(err)
		}
		return "", err
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
