package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/brokerdesk/bd-wap/inbox/domain"
)

// --- Persistence Models ---

type conversationModel struct {
	ID            uint   `gorm:"primaryKey"`
	TenantID      uint   `gorm:"uniqueIndex:idx_convo_tenant_contact;not null"`
	ContactWaID   string `gorm:"uniqueIndex:idx_convo_tenant_contact;size:50;not null"`
	ContactName   string `gorm:"size:120"`
	Mode          string `gorm:"size:10;not null"`
	AssigneeID    *uint  `gorm:"index"`
	LastMessageAt time.Time
	CreatedAt     time.Time
}

func (conversationModel) TableName() string {
	return "inbox_conversations"
}

type agentUserModel struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:80;not null"`
	PasswordHash string `gorm:"size:120;not null"`
	DisplayName  string `gorm:"size:120"`
	CreatedAt    time.Time
}

func (agentUserModel) TableName() string {
	return "agent_users"
}

// --- Conversation Repository ---

type ConversationGormRepository struct {
	db *gorm.DB
}

func NewConversationGormRepository(db *gorm.DB) *ConversationGormRepository {
	return &ConversationGormRepository{db: db}
}

func (r *ConversationGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&conversationModel{})
}

func (r *ConversationGormRepository) UpsertByContact(ctx context.Context, tenantID uint, contactWaID, contactName string) (*domain.Conversation, error) {
	var m conversationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contact_wa_id = ?", tenantID, contactWaID).
		First(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m = conversationModel{
			TenantID:      tenantID,
			ContactWaID:   contactWaID,
			ContactName:   contactName,
			Mode:          string(domain.ModeAI),
			LastMessageAt: time.Now(),
		}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		updates := map[string]any{"last_message_at": time.Now()}
		if contactName != "" && contactName != m.ContactName {
			updates["contact_name"] = contactName
		}
		if err := r.db.WithContext(ctx).Model(&m).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return fromConversationModel(m), nil
}

func (r *ConversationGormRepository) GetByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var m conversationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return fromConversationModel(m), nil
}

func (r *ConversationGormRepository) GetByContact(ctx context.Context, tenantID uint, contactWaID string) (*domain.Conversation, error) {
	var m conversationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contact_wa_id = ?", tenantID, contactWaID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return fromConversationModel(m), nil
}

func (r *ConversationGormRepository) ListByTenant(ctx context.Context, tenantID uint) ([]*domain.Conversation, error) {
	var models []conversationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("last_message_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	conversations := make([]*domain.Conversation, len(models))
	for i, m := range models {
		conversations[i] = fromConversationModel(m)
	}
	return conversations, nil
}

func (r *ConversationGormRepository) SetMode(ctx context.Context, id uint, mode domain.ConversationMode) error {
	result := r.db.WithContext(ctx).
		Model(&conversationModel{}).
		Where("id = ?", id).
		Update("mode", string(mode))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationGormRepository) Assign(ctx context.Context, id uint, agentID *uint) error {
	result := r.db.WithContext(ctx).
		Model(&conversationModel{}).
		Where("id = ?", id).
		Update("assignee_id", agentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func fromConversationModel(m conversationModel) *domain.Conversation {
	return &domain.Conversation{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ContactWaID:   m.ContactWaID,
		ContactName:   m.ContactName,
		Mode:          domain.ConversationMode(m.Mode),
		AssigneeID:    m.AssigneeID,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

// --- Agent Repository ---

type AgentGormRepository struct {
	db *gorm.DB
}

func NewAgentGormRepository(db *gorm.DB) *AgentGormRepository {
	return &AgentGormRepository{db: db}
}

func (r *AgentGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&agentUserModel{})
}

func (r *AgentGormRepository) Create(ctx context.Context, agent *domain.AgentUser) error {
	m := agentUserModel{
		Username:     agent.Username,
		PasswordHash: agent.PasswordHash,
		DisplayName:  agent.DisplayName,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUsernameTaken
		}
		return err
	}
	agent.ID = m.ID
	agent.CreatedAt = m.CreatedAt
	return nil
}

func (r *AgentGormRepository) GetByID(ctx context.Context, id uint) (*domain.AgentUser, error) {
	var m agentUserModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return fromAgentModel(m), nil
}

func (r *AgentGormRepository) GetByUsername(ctx context.Context, username string) (*domain.AgentUser, error) {
	var m agentUserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return fromAgentModel(m), nil
}

func fromAgentModel(m agentUserModel) *domain.AgentUser {
	return &domain.AgentUser{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		CreatedAt:    m.CreatedAt,
	}
}
