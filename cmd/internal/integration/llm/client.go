package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Observer is told about every completion.
type Observer interface {
	LLMRequest(stage, status string, elapsed time.Duration)
}

// Client talks to an OpenAI compatible /chat/completions endpoint.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

func NewClient(cfg Config, observer Observer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		observer: observer,
	}
}

// Complete sends the prompt with temperature 0 and returns the content of the
// first choice. Failures are returned as is; there is no retry.
func (c *Client) Complete(ctx context.Context, prompt *Prompt) (string, error) {
	start := time.Now()
	out, err := c.complete(ctx, prompt)
	if c.observer != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.observer.LLMRequest(prompt.Stage, status, time.Since(start))
	}
	return out, err
}

func (c *Client) complete(ctx context.Context, prompt *Prompt) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("language model API key is not set")
	}

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    prompt.Messages,
		Temperature: 0,
	}
	if prompt.Schema != nil {
		reqBody.ResponseFormat = &respFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseResponse(respBody)
}

func parseResponse(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}
