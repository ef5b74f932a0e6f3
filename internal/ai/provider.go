package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// Kind identifies a supported LLM provider. Keeping this a closed enum makes
// the dispatch switch exhaustive; adding a provider is a compile-time change,
// not a string comparison scattered through the engine.
type Kind int

const (
	KindOpenAI Kind = iota
	KindAnthropic
)

func (k Kind) String() string {
	switch k {
	case KindOpenAI:
		return "openai"
	case KindAnthropic:
		return "anthropic"
	}
	return "unknown"
}

// ParseKind resolves a stored provider name, case-insensitively.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return KindOpenAI, true
	case "anthropic":
		return KindAnthropic, true
	}
	return 0, false
}

// Message is one conversation turn handed to a provider client. Tool fields
// are set only for tool-call sequences; each client shapes them for its own
// wire format.
type Message struct {
	Role       string
	Content    string
	ToolCallID string
	ToolName   string
	ToolInput  json.RawMessage
	ToolOutput json.RawMessage
}

// Request is one completion call. The API key travels per request; clients
// hold no credentials.
type Request struct {
	APIKey      string
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client sends one completion request to an external provider and returns
// the assistant text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
