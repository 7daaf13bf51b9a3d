package llm

import (
	"context"
	"encoding/json"
)

// Provider is the model behind interview feedback. One call, one prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt. When Schema is set the provider asks for
// structured output and the returned content is checked against it.
type Request struct {
	System    string
	Prompt    string
	Schema    *Schema
	MaxTokens int
}

// Schema is a named JSON schema for the model output.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type StopReason string

const (
	StopComplete  StopReason = "complete"
	StopTruncated StopReason = "truncated"
)

type Response struct {
	Content      json.RawMessage
	Model        string
	Stop         StopReason
	InputTokens  int
	OutputTokens int
}
