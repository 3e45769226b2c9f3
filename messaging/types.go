package messaging

import (
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
)

// ReplyKind tells the webhook adapter what to do with a routed reply.
type ReplyKind string

const (
	// ReplyText sends a plain text body.
	ReplyText ReplyKind = "text"
	// ReplyMenu sends the interactive list menu.
	ReplyMenu ReplyKind = "menu"
	// ReplyAssist hands the free text to the AI assistant; the adapter
	// falls back to the standard fallback text when the assistant cannot
	// answer or the conversation is in human mode.
	ReplyAssist ReplyKind = "assist"
)

// Reply is the routed outcome for one inbound message.
type Reply struct {
	Kind ReplyKind
	Text string
}

// Input carries everything routing needs. Routing is a pure function of
// this value: no cross-call memory, no side effects.
type Input struct {
	// Flags is the tenant's post-enforcement flag state.
	Flags map[tenancyDomain.FeatureKey]bool
	// Plan is the tenant's current plan, shown by the settings reply.
	Plan tenancyDomain.Plan
	// Text is the normalized inbound body: trimmed message text, or the
	// selected row id for interactive replies.
	Text string
}

// Enabled reports a flag from the enforced snapshot; absent means disabled.
func (in Input) Enabled(key tenancyDomain.FeatureKey) bool {
	return in.Flags[key]
}
