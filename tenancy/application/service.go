package application

import (
	"context"
	"strings"

	"github.com/brokerdesk/bd-wap/tenancy/domain"
	"github.com/sirupsen/logrus"
)

// TenancyService owns tenant provisioning, flag mutations and plan
// enforcement. Enforcement runs on every inbound message and again after
// every plan or flag mutation, so persisted state can only violate the plan
// invariant transiently between a mutation and the next pass.
type TenancyService struct {
	tenants domain.TenantRepository
	flags   domain.FlagRepository
}

func NewTenancyService(tenants domain.TenantRepository, flags domain.FlagRepository) *TenancyService {
	return &TenancyService{tenants: tenants, flags: flags}
}

// EnsureTenant creates the tenant with the given id if it does not exist and
// seeds any missing flag rows from the default template. Existing flag values
// are never overwritten.
func (s *TenancyService) EnsureTenant(ctx context.Context, id uint) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err == domain.ErrTenantNotFound {
		tenant = &domain.Tenant{ID: id, Name: "Default Tenant", Plan: domain.PlanStarter}
		if err := s.tenants.Create(ctx, tenant); err != nil {
			return nil, err
		}
		logrus.Infof("[TENANCY] Provisioned default tenant #%d", id)
	} else if err != nil {
		return nil, err
	}

	existing, err := s.flags.Get(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	missing := make(map[domain.FeatureKey]bool)
	for key, enabled := range domain.DefaultFlags() {
		if _, ok := existing[key]; !ok {
			missing[key] = enabled
		}
	}
	if len(missing) > 0 {
		if err := s.flags.SetMany(ctx, tenant.ID, missing); err != nil {
			return nil, err
		}
	}
	return tenant, nil
}

// CreateTenant provisions a new tenant with the default flag template and
// runs an enforcement pass so the seeded flags honor the chosen plan.
func (s *TenancyService) CreateTenant(ctx context.Context, name string, plan domain.Plan, whatsappNumber string) (*domain.Tenant, error) {
	normalized, err := normalizePlan(plan)
	if err != nil {
		return nil, err
	}
	tenant := &domain.Tenant{
		Name:           strings.TrimSpace(name),
		WhatsappNumber: strings.TrimSpace(whatsappNumber),
		Plan:           normalized,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	if err := s.flags.SetMany(ctx, tenant.ID, domain.DefaultFlags()); err != nil {
		return nil, err
	}
	if _, err := s.Enforce(ctx, tenant.ID); err != nil {
		return nil, err
	}
	return tenant, nil
}

// SetPlan updates the tenant's plan and immediately re-enforces flags,
// stripping anything the new plan disallows.
func (s *TenancyService) SetPlan(ctx context.Context, tenantID uint, plan domain.Plan) error {
	normalized, err := normalizePlan(plan)
	if err != nil {
		return err
	}
	if err := s.tenants.UpdatePlan(ctx, tenantID, normalized); err != nil {
		return err
	}
	_, err = s.Enforce(ctx, tenantID)
	return err
}

// SetFlag upserts one flag and re-enforces. Turning on a flag the plan
// disallows is therefore immediately undone by the enforcement pass.
func (s *TenancyService) SetFlag(ctx context.Context, tenantID uint, key domain.FeatureKey, enabled bool) error {
	if !validFeatureKey(key) {
		return domain.ErrInvalidFeatureKey
	}
	if err := s.flags.Set(ctx, tenantID, key, enabled); err != nil {
		return err
	}
	_, err := s.Enforce(ctx, tenantID)
	return err
}

// Enforce disables every enabled flag the tenant's plan does not permit and
// returns the resulting full flag mapping. It never enables anything: a plan
// upgrade grants nothing until an admin flips the flag explicitly. An unknown
// tenant yields an empty mapping and no writes.
func (s *TenancyService) Enforce(ctx context.Context, tenantID uint) (map[domain.FeatureKey]bool, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err == domain.ErrTenantNotFound {
		return map[domain.FeatureKey]bool{}, nil
	}
	if err != nil {
		return nil, err
	}

	flags, err := s.flags.Get(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	allowed := domain.AllowedFeatures(tenant.Plan)
	toDisable := make(map[domain.FeatureKey]bool)
	for key, enabled := range flags {
		if !enabled {
			continue
		}
		if _, ok := allowed[key]; !ok {
			toDisable[key] = false
		}
	}

	if len(toDisable) > 0 {
		if err := s.flags.SetMany(ctx, tenant.ID, toDisable); err != nil {
			return nil, err
		}
		for key := range toDisable {
			flags[key] = false
			logrus.Debugf("[TENANCY] Enforcement disabled %s for tenant #%d (plan %s)", key, tenant.ID, tenant.Plan)
		}
	}
	return flags, nil
}

// Flags returns the persisted flag rows for the tenant.
func (s *TenancyService) Flags(ctx context.Context, tenantID uint) (map[domain.FeatureKey]bool, error) {
	return s.flags.Get(ctx, tenantID)
}

// IsEnabled reports one flag; absent rows are disabled.
func (s *TenancyService) IsEnabled(ctx context.Context, tenantID uint, key domain.FeatureKey) (bool, error) {
	return s.flags.IsEnabled(ctx, tenantID, key)
}

func (s *TenancyService) Tenant(ctx context.Context, id uint) (*domain.Tenant, error) {
	return s.tenants.GetByID(ctx, id)
}

// ResolveByNumber finds the tenant owning a WhatsApp line. Unmatched
// numbers fall back to the default tenant so a misconfigured line still
// gets answered.
func (s *TenancyService) ResolveByNumber(ctx context.Context, number string, defaultID uint) (*domain.Tenant, error) {
	if number != "" {
		tenants, err := s.tenants.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range tenants {
			if t.WhatsappNumber != "" && t.WhatsappNumber == number {
				return t, nil
			}
		}
	}
	return s.tenants.GetByID(ctx, defaultID)
}

func (s *TenancyService) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	return s.tenants.List(ctx)
}

func normalizePlan(plan domain.Plan) (domain.Plan, error) {
	normalized := domain.Plan(strings.ToLower(strings.TrimSpace(string(plan))))
	for _, known := range domain.Plans {
		if normalized == known {
			return normalized, nil
		}
	}
	return "", domain.ErrInvalidPlan
}

func validFeatureKey(key domain.FeatureKey) bool {
	for _, known := range domain.AllFeatureKeys() {
		if key == known {
			return true
		}
	}
	return false
}
