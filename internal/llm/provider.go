package llm

import "context"

// Roles of chat messages sent to a completion provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the ordered context handed to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request contains chat completion parameters
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response contains LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete generates a reply for an ordered message context
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}
