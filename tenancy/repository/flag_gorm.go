package repository

import (
	"context"

	"github.com/brokerdesk/bd-wap/tenancy/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Persistence Model ---

type featureFlagModel struct {
	ID       uint   `gorm:"primaryKey"`
	TenantID uint   `gorm:"uniqueIndex:idx_flags_tenant_key,priority:1;not null"`
	Key      string `gorm:"column:flag_key;size:80;uniqueIndex:idx_flags_tenant_key,priority:2;not null"`
	Enabled  bool   `gorm:"default:false"`
}

func (featureFlagModel) TableName() string {
	return "feature_flags"
}

// --- Repository Implementation ---

type FlagGormRepository struct {
	db *gorm.DB
}

func NewFlagGormRepository(db *gorm.DB) *FlagGormRepository {
	return &FlagGormRepository{db: db}
}

func (r *FlagGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&featureFlagModel{})
}

func (r *FlagGormRepository) Get(ctx context.Context, tenantID uint) (map[domain.FeatureKey]bool, error) {
	var models []featureFlagModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&models).Error; err != nil {
		return nil, err
	}
	flags := make(map[domain.FeatureKey]bool, len(models))
	for _, m := range models {
		flags[domain.FeatureKey(m.Key)] = m.Enabled
	}
	return flags, nil
}

func (r *FlagGormRepository) Set(ctx context.Context, tenantID uint, key domain.FeatureKey, enabled bool) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "flag_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"enabled": enabled}),
	}).Create(&featureFlagModel{
		TenantID: tenantID,
		Key:      string(key),
		Enabled:  enabled,
	}).Error
}

func (r *FlagGormRepository) SetMany(ctx context.Context, tenantID uint, values map[domain.FeatureKey]bool) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, enabled := range values {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "flag_key"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"enabled": enabled}),
			}).Create(&featureFlagModel{
				TenantID: tenantID,
				Key:      string(key),
				Enabled:  enabled,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FlagGormRepository) IsEnabled(ctx context.Context, tenantID uint, key domain.FeatureKey) (bool, error) {
	var m featureFlagModel
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND flag_key = ?", tenantID, string(key)).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return m.Enabled, nil
}
