package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedFeatures_KnownPlans(t *testing.T) {
	starter := AllowedFeatures(PlanStarter)
	assert.Contains(t, starter, FeatureMarketBrief)
	assert.Contains(t, starter, FeatureComplianceLog)
	assert.NotContains(t, starter, FeatureRiskRadar)
	assert.NotContains(t, starter, FeatureCallAI)

	pro := AllowedFeatures(PlanPro)
	assert.Contains(t, pro, FeatureRiskRadar)
	assert.Contains(t, pro, FeatureCallPriority)
	assert.NotContains(t, pro, FeatureCallAI)
	assert.NotContains(t, pro, FeatureVoiceReply)

	elite := AllowedFeatures(PlanElite)
	enterprise := AllowedFeatures(PlanEnterprise)
	for _, k := range AllFeatureKeys() {
		assert.Contains(t, elite, k, "elite should permit %s", k)
		assert.Contains(t, enterprise, k, "enterprise should permit %s", k)
	}
}

func TestAllowedFeatures_UnknownPlanFallsBackToStarter(t *testing.T) {
	starter := AllowedFeatures(PlanStarter)

	for _, plan := range []Plan{"", "gold", "STARTER ", "Free"} {
		got := AllowedFeatures(plan)
		require.NotEmpty(t, got, "plan %q must never map to an empty set", plan)
		if plan == "STARTER " {
			assert.Equal(t, starter, got)
			continue
		}
		if plan == "" || plan == "gold" || plan == "Free" {
			assert.Equal(t, starter, got, "plan %q should fall back to starter", plan)
		}
	}
}

func TestAllowedFeatures_CaseInsensitive(t *testing.T) {
	assert.Equal(t, AllowedFeatures(PlanElite), AllowedFeatures("Elite"))
	assert.Equal(t, AllowedFeatures(PlanPro), AllowedFeatures("PRO"))
}

func TestDefaultFlags_CoversEveryKey(t *testing.T) {
	defaults := DefaultFlags()
	require.Len(t, defaults, len(AllFeatureKeys()))

	// The seed template never enables anything the starter plan disallows.
	starter := AllowedFeatures(PlanStarter)
	for key, enabled := range defaults {
		if enabled {
			assert.Contains(t, starter, key, "default-on key %s must be starter-allowed", key)
		}
	}
}

func TestRequiredPlan(t *testing.T) {
	assert.Equal(t, PlanStarter, RequiredPlan(FeatureMarketBrief))
	assert.Equal(t, PlanPro, RequiredPlan(FeatureRiskRadar))
	assert.Equal(t, PlanPro, RequiredPlan(FeatureCallPriority))
	assert.Equal(t, PlanElite, RequiredPlan(FeatureCallAI))
	assert.Equal(t, PlanElite, RequiredPlan(FeatureVoiceReply))
}
