package domain

// UpdateSettingsRequest carries the operator-tunable values. The dashboard
// form posts the full state, so absent fields clear their overrides.
type UpdateSettingsRequest struct {
	AssistantSystemPrompt string `json:"assistant_system_prompt" form:"assistant_system_prompt"`
	AssistantModel        string `json:"assistant_model" form:"assistant_model"`
	DashboardTitle        string `json:"dashboard_title" form:"dashboard_title"`
}
