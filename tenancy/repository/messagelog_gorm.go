package repository

import (
	"context"
	"time"

	"github.com/brokerdesk/bd-wap/tenancy/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type messageLogModel struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  uint   `gorm:"index;not null"`
	WaFrom    string `gorm:"size:50"`
	WaTo      string `gorm:"size:50"`
	Direction string `gorm:"size:10;not null"`
	Body      string `gorm:"type:text"`
	CreatedAt time.Time
}

func (messageLogModel) TableName() string {
	return "message_logs"
}

// --- Repository Implementation ---

type MessageLogGormRepository struct {
	db *gorm.DB
}

func NewMessageLogGormRepository(db *gorm.DB) *MessageLogGormRepository {
	return &MessageLogGormRepository{db: db}
}

func (r *MessageLogGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&messageLogModel{})
}

func (r *MessageLogGormRepository) Append(ctx context.Context, entry *domain.MessageLog) error {
	m := messageLogModel{
		TenantID:  entry.TenantID,
		WaFrom:    entry.From,
		WaTo:      entry.To,
		Direction: entry.Direction,
		Body:      entry.Body,
		CreatedAt: entry.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	entry.ID = m.ID
	entry.CreatedAt = m.CreatedAt
	return nil
}

func (r *MessageLogGormRepository) CountByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messageLogModel{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}

func (r *MessageLogGormRepository) LastByTenant(ctx context.Context, tenantID uint) (*time.Time, error) {
	var m messageLogModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m.CreatedAt, nil
}

func (r *MessageLogGormRepository) ListByContact(ctx context.Context, tenantID uint, waID string, limit int) ([]*domain.MessageLog, error) {
	if limit <= 0 {
		limit = 200
	}
	// Take the newest rows, then flip back to chronological order so a
	// long thread shows its recent tail, not its oldest page.
	var models []messageLogModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (wa_from = ? OR wa_to = ?)", tenantID, waID, waID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	logs := make([]*domain.MessageLog, len(models))
	for i, m := range models {
		logs[len(models)-1-i] = fromMessageLogModel(m)
	}
	return logs, nil
}

func fromMessageLogModel(m messageLogModel) *domain.MessageLog {
	return &domain.MessageLog{
		ID:        m.ID,
		TenantID:  m.TenantID,
		From:      m.WaFrom,
		To:        m.WaTo,
		Direction: m.Direction,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func (r *MessageLogGormRepository) ListByTenant(ctx context.Context, tenantID uint, limit int) ([]*domain.MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []messageLogModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}
	logs := make([]*domain.MessageLog, len(models))
	for i, m := range models {
		logs[i] = fromMessageLogModel(m)
	}
	return logs, nil
}
