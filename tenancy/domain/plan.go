package domain

import "strings"

// planFeatures is the static catalog mapping each plan to the feature keys
// it permits. Not persisted, not tenant-specific.
var planFeatures = map[Plan]map[FeatureKey]struct{}{
	PlanStarter: setOf(
		FeatureMarketBrief, FeatureWhyMarketMoved, FeatureSebiAdvisory,
		FeatureClientAI, FeatureComplianceLog,
	),
	PlanPro: setOf(
		FeatureMarketBrief, FeatureWhyMarketMoved, FeatureRiskRadar,
		FeatureCallPriority, FeatureSebiAdvisory, FeatureClientAI,
		FeatureComplianceLog,
	),
	PlanElite: setOf(
		FeatureMarketBrief, FeatureWhyMarketMoved, FeatureRiskRadar,
		FeatureCallPriority, FeatureSebiAdvisory, FeatureClientAI,
		FeatureCallAI, FeatureVoiceReply, FeatureComplianceLog,
	),
	PlanEnterprise: setOf(
		FeatureMarketBrief, FeatureWhyMarketMoved, FeatureRiskRadar,
		FeatureCallPriority, FeatureSebiAdvisory, FeatureClientAI,
		FeatureCallAI, FeatureVoiceReply, FeatureComplianceLog,
	),
}

// AllowedFeatures returns the set of feature keys the given plan permits.
// Unknown or empty plan names fall back to the starter set, never an error
// and never an empty set.
func AllowedFeatures(plan Plan) map[FeatureKey]struct{} {
	normalized := Plan(strings.ToLower(strings.TrimSpace(string(plan))))
	if features, ok := planFeatures[normalized]; ok {
		return features
	}
	return planFeatures[PlanStarter]
}

// DefaultFlags is the seed template applied when a tenant is created.
// Starter-tier capabilities default on; paid add-ons default off and require
// an explicit admin toggle even after an upgrade.
func DefaultFlags() map[FeatureKey]bool {
	return map[FeatureKey]bool{
		FeatureMarketBrief:    true,
		FeatureWhyMarketMoved: true,
		FeatureSebiAdvisory:   true,
		FeatureClientAI:       true,
		FeatureComplianceLog:  true,
		FeatureRiskRadar:      false,
		FeatureCallPriority:   false,
		FeatureCallAI:         false,
		FeatureVoiceReply:     false,
	}
}

// AllFeatureKeys returns every known feature key.
func AllFeatureKeys() []FeatureKey {
	return []FeatureKey{
		FeatureMarketBrief, FeatureWhyMarketMoved, FeatureRiskRadar,
		FeatureCallPriority, FeatureSebiAdvisory, FeatureClientAI,
		FeatureCallAI, FeatureVoiceReply, FeatureComplianceLog,
	}
}

// RequiredPlan returns the lowest tier that permits the given feature key.
// Used to name the upgrade target in locked replies.
func RequiredPlan(key FeatureKey) Plan {
	for _, plan := range Plans {
		if _, ok := planFeatures[plan][key]; ok {
			return plan
		}
	}
	return PlanStarter
}

func setOf(keys ...FeatureKey) map[FeatureKey]struct{} {
	s := make(map[FeatureKey]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}
