package domain

import (
	"context"
	"time"
)

// TenantRepository defines the persistence operations for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id uint) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	UpdatePlan(ctx context.Context, id uint, plan Plan) error
}

// FlagRepository defines the persistence operations for feature flags.
// Every mutating call commits before returning; the next Get, even from a
// different request, observes the write.
type FlagRepository interface {
	// Get returns every flag row persisted for the tenant. Keys never
	// written are absent; callers treat absence as disabled.
	Get(ctx context.Context, tenantID uint) (map[FeatureKey]bool, error)

	// Set upserts the flag row. Idempotent.
	Set(ctx context.Context, tenantID uint, key FeatureKey, enabled bool) error

	// SetMany disables or enables several flags in one transaction.
	SetMany(ctx context.Context, tenantID uint, values map[FeatureKey]bool) error

	// IsEnabled reports the flag state; an absent row is disabled.
	IsEnabled(ctx context.Context, tenantID uint, key FeatureKey) (bool, error)
}

// MessageLogRepository persists the compliance message log.
type MessageLogRepository interface {
	Append(ctx context.Context, entry *MessageLog) error
	CountByTenant(ctx context.Context, tenantID uint) (int64, error)
	LastByTenant(ctx context.Context, tenantID uint) (*time.Time, error)
	ListByTenant(ctx context.Context, tenantID uint, limit int) ([]*MessageLog, error)

	// ListByContact returns the exchange with one wa id, oldest first, for
	// the conversation view.
	ListByContact(ctx context.Context, tenantID uint, waID string, limit int) ([]*MessageLog, error)
}
