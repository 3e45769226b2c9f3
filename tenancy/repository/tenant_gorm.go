package repository

import (
	"context"
	"time"

	"github.com/brokerdesk/bd-wap/tenancy/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type tenantModel struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:200;not null;default:'Unnamed Tenant'"`
	WhatsappNumber string `gorm:"size:50"`
	Plan           string `gorm:"size:30;not null;default:'starter'"`
	CreatedAt      time.Time
}

func (tenantModel) TableName() string {
	return "tenants"
}

// --- Repository Implementation ---

type TenantGormRepository struct {
	db *gorm.DB
}

func NewTenantGormRepository(db *gorm.DB) *TenantGormRepository {
	return &TenantGormRepository{db: db}
}

func (r *TenantGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&tenantModel{})
}

func (r *TenantGormRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}
	m := toTenantModel(tenant)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	tenant.ID = m.ID
	return nil
}

func (r *TenantGormRepository) GetByID(ctx context.Context, id uint) (*domain.Tenant, error) {
	var m tenantModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return fromTenantModel(m), nil
}

func (r *TenantGormRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	var models []tenantModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	tenants := make([]*domain.Tenant, len(models))
	for i, m := range models {
		tenants[i] = fromTenantModel(m)
	}
	return tenants, nil
}

func (r *TenantGormRepository) UpdatePlan(ctx context.Context, id uint, plan domain.Plan) error {
	result := r.db.WithContext(ctx).Model(&tenantModel{}).Where("id = ?", id).Update("plan", string(plan))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// --- Mappers ---

func toTenantModel(t *domain.Tenant) tenantModel {
	return tenantModel{
		ID:             t.ID,
		Name:           t.Name,
		WhatsappNumber: t.WhatsappNumber,
		Plan:           string(t.Plan),
		CreatedAt:      t.CreatedAt,
	}
}

func fromTenantModel(m tenantModel) *domain.Tenant {
	return &domain.Tenant{
		ID:             m.ID,
		Name:           m.Name,
		WhatsappNumber: m.WhatsappNumber,
		Plan:           domain.Plan(m.Plan),
		CreatedAt:      m.CreatedAt,
	}
}
