package llm

import (
	"context"
	"fmt"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Schema describes the JSON object a completion must produce.
type Schema struct {
	Name   string
	Fields []SchemaField
}

type SchemaField struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Prompt is a single completion request. A non-nil Schema asks the model for
// a JSON object. Stage labels the call in metrics.
type Prompt struct {
	Stage    string
	Messages []Message
	Schema   *Schema
}

// Completer is the one capability the assistant needs from a model provider.
type Completer interface {
	Complete(ctx context.Context, prompt *Prompt) (string, error)
}

// APIError is a non-200 answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

type chatRequest struct {
	Model          string      `json:"model"`
	Messages       []Message   `json:"messages"`
	Temperature    float64     `json:"temperature"`
	ResponseFormat *respFormat `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiErrBody  `json:"error,omitempty"`
}

type chatChoice struct {
	Message Message `json:"message"`
}

type apiErrBody struct {
	Message string `json:"message"`
}
