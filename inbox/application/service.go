package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brokerdesk/bd-wap/inbox/domain"
	"github.com/brokerdesk/bd-wap/pkg/security"
)

// InboxService manages the human/AI handoff: which conversations the bot may
// auto-answer and which belong to an agent.
type InboxService struct {
	conversations domain.ConversationRepository
	agents        domain.AgentRepository
}

func NewInboxService(conversations domain.ConversationRepository, agents domain.AgentRepository) *InboxService {
	return &InboxService{
		conversations: conversations,
		agents:        agents,
	}
}

// TouchInbound records contact activity, creating the conversation in AI
// mode on first message.
func (s *InboxService) TouchInbound(ctx context.Context, tenantID uint, contactWaID, contactName string) (*domain.Conversation, error) {
	return s.conversations.UpsertByContact(ctx, tenantID, contactWaID, contactName)
}

// ShouldAutoAnswer reports whether the bot may reply to this contact. A
// conversation claimed by a human stays silent on the bot side.
func (s *InboxService) ShouldAutoAnswer(conversation *domain.Conversation) bool {
	if conversation == nil {
		return true
	}
	return conversation.Mode == domain.ModeAI
}

func (s *InboxService) Conversations(ctx context.Context, tenantID uint) ([]*domain.Conversation, error) {
	return s.conversations.ListByTenant(ctx, tenantID)
}

func (s *InboxService) Conversation(ctx context.Context, id uint) (*domain.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

// AssignToMe claims a conversation for an agent. The claim always forces
// human mode so the bot stops answering immediately.
func (s *InboxService) AssignToMe(ctx context.Context, conversationID, agentID uint) error {
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		return err
	}
	if err := s.conversations.Assign(ctx, conversationID, &agentID); err != nil {
		return err
	}
	return s.conversations.SetMode(ctx, conversationID, domain.ModeHuman)
}

// SetMode switches who answers. Returning a conversation to AI mode also
// releases the assignee.
func (s *InboxService) SetMode(ctx context.Context, conversationID uint, mode domain.ConversationMode) error {
	if !domain.ValidMode(mode) {
		return domain.ErrInvalidMode
	}
	if err := s.conversations.SetMode(ctx, conversationID, mode); err != nil {
		return err
	}
	if mode == domain.ModeAI {
		return s.conversations.Assign(ctx, conversationID, nil)
	}
	return nil
}

// Login verifies agent credentials. The same error covers unknown usernames
// and wrong passwords.
func (s *InboxService) Login(ctx context.Context, username, password string) (*domain.AgentUser, error) {
	agent, err := s.agents.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.CheckPasswordHash(password, agent.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return agent, nil
}

func (s *InboxService) AgentByID(ctx context.Context, id uint) (*domain.AgentUser, error) {
	return s.agents.GetByID(ctx, id)
}

// SeedAgent provisions the initial operator account unless the username is
// already registered.
func (s *InboxService) SeedAgent(ctx context.Context, username, password, displayName string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.agents.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	agent := &domain.AgentUser{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return err
	}
	logrus.Infof("[INBOX] seeded agent account %s", username)
	return nil
}
