package domain

import "context"

// ChatTurn is a single exchange in a contact's conversation history.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest carries everything a provider needs for one completion.
type ChatRequest struct {
	SystemPrompt string
	History      []ChatTurn
	UserText     string
	Model        string
}

type ChatResponse struct {
	Text string
}

// AIProvider is the adapter for a hosted LLM API.
type AIProvider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// HistoryStore keeps recent turns per contact so the assistant can hold a
// conversation. Implementations bound retention; very old turns are evicted.
type HistoryStore interface {
	Load(ctx context.Context, contactID string) ([]ChatTurn, error)
	Append(ctx context.Context, contactID string, turns ...ChatTurn) error
	Clear(ctx context.Context, contactID string) error
}
