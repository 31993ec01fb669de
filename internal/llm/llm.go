package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/tidwall/gjson"
)

const maxResponseSize = 4 << 20

// Roles of a chat message.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat completion API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("chat completion API returned status %d: %s", e.StatusCode, e.Message)
}

// Client is a client for OpenAI compatible chat completion APIs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a new chat completion client.
func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.Default().WithPrefix("llm"),
	}
}

// Complete sends the request and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(data, "error.message").String(),
		}
	}

	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("invalid JSON in chat completion response")
	}
	content := gjson.GetBytes(data, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("chat completion response has no choices")
	}

	c.logger.Debug("chat completion finished",
		"model", req.Model,
		"duration", time.Since(start),
		"total_tokens", gjson.GetBytes(data, "usage.total_tokens").Int(),
	)
	return content.String(), nil
}
