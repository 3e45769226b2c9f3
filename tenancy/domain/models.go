package domain

import "time"

// Plan is a subscription tier governing which feature keys may be enabled.
type Plan string

const (
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanElite      Plan = "elite"
	PlanEnterprise Plan = "enterprise"
)

// Plans lists every known tier, in upgrade order.
var Plans = []Plan{PlanStarter, PlanPro, PlanElite, PlanEnterprise}

// FeatureKey identifies one gated capability of the bot.
type FeatureKey string

const (
	FeatureMarketBrief    FeatureKey = "F_MARKET_BRIEF"
	FeatureWhyMarketMoved FeatureKey = "F_WHY_MARKET_MOVED"
	FeatureRiskRadar      FeatureKey = "F_RISK_RADAR"
	FeatureCallPriority   FeatureKey = "F_CALL_PRIORITY"
	FeatureSebiAdvisory   FeatureKey = "F_SEBI_ADVISORY"
	FeatureClientAI       FeatureKey = "F_CLIENT_AI"
	FeatureCallAI         FeatureKey = "F_CALL_AI"
	FeatureVoiceReply     FeatureKey = "F_VOICE_REPLY"
	FeatureComplianceLog  FeatureKey = "F_COMPLIANCE_LOG"
)

// Tenant represents one advisory desk account with a subscription plan.
type Tenant struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	WhatsappNumber string    `json:"whatsapp_number,omitempty"`
	Plan           Plan      `json:"plan"`
	CreatedAt      time.Time `json:"created_at"`
}

// FeatureFlag is a per-tenant boolean toggle for one feature key.
// A (tenant, key) pair is unique.
type FeatureFlag struct {
	ID       uint       `json:"id"`
	TenantID uint       `json:"tenant_id"`
	Key      FeatureKey `json:"key"`
	Enabled  bool       `json:"enabled"`
}

// MessageLog records one inbound or outbound message for compliance purposes.
type MessageLog struct {
	ID        uint      `json:"id"`
	TenantID  uint      `json:"tenant_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Direction string    `json:"direction"` // "inbound" or "outbound"
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)
