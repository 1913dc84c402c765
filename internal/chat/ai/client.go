// Package ai provides the Groq-backed collaborators for the chat flow:
// reply generation and qualification-answer extraction. Groq exposes an
// OpenAI-compatible chat-completions API, so the client is plain net/http.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrDisabled is returned when no API key is configured. Callers fall
// back to canned replies instead of treating this as an outage.
var ErrDisabled = errors.New("groq disabled: no API key configured")

// Config for the Groq client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a minimal chat-completions client.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Groq client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// ChatCompletion sends the messages and returns the first choice's content.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrDisabled
	}

	payload := map[string]interface{}{
		"model":       c.config.Model,
		"messages":    messages,
		"temperature": temperature,
	}
	if maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call groq: %w", err)
	}
	defer resp.Body.Close()

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode groq response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("groq api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("groq api error: empty choices")
	}

	return result.Choices[0].Message.Content, nil
}
