package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"taxrag/internal/domain"
)

// GroqClient calls a chat-completion style endpoint (Groq's OpenAI-
// compatible API by default) with fixed low-temperature settings suited
// to fact-grounded analysis.
type GroqClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// GroqConfig configures the chat-completion client.
type GroqConfig struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewGroqClient creates a chat-completion client from the configuration.
func NewGroqClient(cfg GroqConfig) (*GroqClient, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GROQ_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &GroqClient{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: t},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user message and returns the
// first choice's content. Any transport, status or format problem is a
// GenerationError.
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	data, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", &domain.GenerationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &domain.GenerationError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.GenerationError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.GenerationError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %s", resp.Status, truncateBody(payload)),
		}
	}

	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", &domain.GenerationError{Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", &domain.GenerationError{Status: resp.StatusCode, Err: errors.New("response contained no choices")}
	}
	return out.Choices[0].Message.Content, nil
}

func truncateBody(b []byte) string {
	const limit = 200
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
