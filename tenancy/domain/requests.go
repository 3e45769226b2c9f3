package domain

// CreateTenantRequest is the admin payload for provisioning a tenant.
type CreateTenantRequest struct {
	Name           string `json:"name" form:"name"`
	Plan           string `json:"plan" form:"plan"`
	WhatsappNumber string `json:"whatsapp_number" form:"whatsapp_number"`
}

// SetPlanRequest changes a tenant's subscription plan.
type SetPlanRequest struct {
	Plan string `json:"plan" form:"plan"`
}

// SetFlagRequest toggles a single feature flag.
type SetFlagRequest struct {
	Key     string `json:"key" form:"key"`
	Enabled bool   `json:"enabled" form:"enabled"`
}
