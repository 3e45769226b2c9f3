package domain

import "context"

// ConversationRepository persists contact threads.
type ConversationRepository interface {
	// UpsertByContact returns the conversation for (tenant, contact),
	// creating it in AI mode when absent, and refreshes the contact name
	// and last-message timestamp.
	UpsertByContact(ctx context.Context, tenantID uint, contactWaID, contactName string) (*Conversation, error)

	GetByID(ctx context.Context, id uint) (*Conversation, error)
	GetByContact(ctx context.Context, tenantID uint, contactWaID string) (*Conversation, error)
	ListByTenant(ctx context.Context, tenantID uint) ([]*Conversation, error)

	SetMode(ctx context.Context, id uint, mode ConversationMode) error
	Assign(ctx context.Context, id uint, agentID *uint) error
}

// AgentRepository persists dashboard operators.
type AgentRepository interface {
	Create(ctx context.Context, agent *AgentUser) error
	GetByID(ctx context.Context, id uint) (*AgentUser, error)
	GetByUsername(ctx context.Context, username string) (*AgentUser, error)
}
