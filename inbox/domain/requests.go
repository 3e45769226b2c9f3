package domain

// LoginRequest carries agent credentials from the inbox login form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AgentReplyRequest is an agent's outbound message from the conversation view.
type AgentReplyRequest struct {
	Text string `json:"text" form:"text"`
}

// SetModeRequest switches a conversation between AI and human handling.
type SetModeRequest struct {
	Mode string `json:"mode" form:"mode"`
}
