package domain

import "time"

// ConversationMode controls who answers a contact: the bot or a human agent.
type ConversationMode string

const (
	ModeAI    ConversationMode = "ai"
	ModeHuman ConversationMode = "human"
)

func ValidMode(m ConversationMode) bool {
	return m == ModeAI || m == ModeHuman
}

// Conversation is one contact's thread on a tenant's WhatsApp line. New
// conversations start in AI mode; assignment to an agent forces human mode.
type Conversation struct {
	ID            uint
	TenantID      uint
	ContactWaID   string
	ContactName   string
	Mode          ConversationMode
	AssigneeID    *uint
	LastMessageAt time.Time
	CreatedAt     time.Time
}

// AgentUser is a human operator with dashboard access.
type AgentUser struct {
	ID           uint
	Username     string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}
