package messaging

import (
	"fmt"
	"sort"
	"strings"

	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
)

// Menu row ids, as delivered in interactive list replies.
const (
	CmdMarketBrief    = "MARKET_BRIEF"
	CmdWhyMarketMoved = "WHY_MARKET_MOVED"
	CmdRiskAlerts     = "RISK_ALERTS"
	CmdCallPriority   = "CALL_PRIORITY"
	CmdSebiAdvisory   = "SEBI_ADVISORY"
	CmdClientAI       = "CLIENT_AI"
	CmdCallSummary    = "CALL_SUMMARY"
	CmdSettings       = "SETTINGS"
)

// FallbackText is the fixed reply for anything the dispatch table does not
// recognize.
const FallbackText = "Reply 'Menu' to see options."

// safeRewriteText is the fixed compliance-safe rewrite template. The router
// returns it verbatim instead of echoing risky wording back.
const safeRewriteText = "✅ SEBI-safe version:\n“This is market-linked and subject to risk. Please consider your risk profile before investing.”"

// riskyPhrases is the literal deny-list for the compliance rewrite branch.
// Matching is a case-insensitive substring scan, nothing smarter.
var riskyPhrases = []string{"guarantee", "sure", "100%", "fixed return"}

// minRiskyLength is the minimum body length before the deny-list applies.
const minRiskyLength = 15

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "menu": {}, "start": {},
}

type commandEntry struct {
	feature tenancyDomain.FeatureKey
	name    string
	plural  bool // "summaries are", not "summaries is"
	reply   string
}

// dispatch is the fixed command table. Each entry gates its reply on one
// feature key; a disabled key yields the locked reply instead.
var dispatch = map[string]commandEntry{
	CmdMarketBrief: {
		feature: tenancyDomain.FeatureMarketBrief,
		name:    "Market Brief",
		reply:   "📌 Market Brief\n• NIFTY: -0.42%\n• BANKNIFTY: Weak\n• FII: Net sellers",
	},
	CmdWhyMarketMoved: {
		feature: tenancyDomain.FeatureWhyMarketMoved,
		name:    "Why Market Moved",
		reply:   "🧠 Why Market Moved\nOI unwinding + global yield move.",
	},
	CmdRiskAlerts: {
		feature: tenancyDomain.FeatureRiskRadar,
		name:    "Risk Radar",
		reply:   "🔴 Risk Alerts\n• Client A: high margin usage\n• Client B: panic pattern",
	},
	CmdCallPriority: {
		feature: tenancyDomain.FeatureCallPriority,
		name:    "Call Priority",
		reply:   "📞 Priority Calls\n1) Client X — drawdown\n2) Client Y — expiry risk\n3) Client Z — panic history",
	},
	CmdSebiAdvisory: {
		feature: tenancyDomain.FeatureSebiAdvisory,
		name:    "SEBI Advisory Generator",
		reply:   "✅ Paste the message you want to rewrite in SEBI-safe language.",
	},
	CmdClientAI: {
		feature: tenancyDomain.FeatureClientAI,
		name:    "Client Query Assistant",
		reply:   "🤖 Client Query Assistant\nAsk anything about a client holding, e.g. 'What should I tell clients holding Reliance?'",
	},
	CmdCallSummary: {
		feature: tenancyDomain.FeatureCallAI,
		name:    "Call AI summaries",
		plural:  true,
		reply:   "📞 Call Summary\nEmotion: anxious\nRisky promises: none\nFollow-up: suggested",
	},
}

// Route maps one normalized inbound message to a reply. Pure: the outcome
// depends only on the enforced flag snapshot and the text.
func Route(in Input) Reply {
	text := strings.TrimSpace(in.Text)
	lower := strings.ToLower(text)

	if _, ok := greetings[lower]; ok {
		return Reply{Kind: ReplyMenu}
	}

	if entry, ok := dispatch[text]; ok {
		if !in.Enabled(entry.feature) {
			return Reply{Kind: ReplyText, Text: lockedReply(entry)}
		}
		return Reply{Kind: ReplyText, Text: entry.reply}
	}

	if text == CmdSettings || lower == "settings" || lower == "upgrade" {
		return Reply{Kind: ReplyText, Text: settingsReply(in)}
	}

	if in.Enabled(tenancyDomain.FeatureSebiAdvisory) && isRiskyWording(text) {
		return Reply{Kind: ReplyText, Text: safeRewriteText}
	}

	if in.Enabled(tenancyDomain.FeatureClientAI) && text != "" {
		return Reply{Kind: ReplyAssist, Text: FallbackText}
	}

	return Reply{Kind: ReplyText, Text: FallbackText}
}

// isRiskyWording applies the deny-list: long enough and containing any risky
// substring, case-insensitively.
func isRiskyWording(text string) bool {
	if len(text) <= minRiskyLength {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range riskyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func lockedReply(entry commandEntry) string {
	verb := "is"
	if entry.plural {
		verb = "are"
	}

	required := tenancyDomain.RequiredPlan(entry.feature)
	if required == tenancyDomain.PlanStarter {
		return fmt.Sprintf("🔒 %s %s not enabled on your plan.", entry.name, verb)
	}

	tier := capitalize(string(required))
	article := "a"
	if strings.ContainsRune("AEIOU", rune(tier[0])) {
		article = "an"
	}
	return fmt.Sprintf("🔒 %s %s %s %s feature. Reply 'Upgrade' to enable.", entry.name, verb, article, tier)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func settingsReply(in Input) string {
	plan := in.Plan
	if plan == "" {
		plan = tenancyDomain.PlanStarter
	}

	enabled := make([]string, 0, len(in.Flags))
	for key, on := range in.Flags {
		if on {
			enabled = append(enabled, strings.TrimPrefix(string(key), "F_"))
		}
	}
	sort.Strings(enabled)

	list := "(none)"
	if len(enabled) > 0 {
		list = strings.Join(enabled, ", ")
	}
	return fmt.Sprintf("⚙️ Current Plan: %s\nEnabled: %s\n\nAdmin can upgrade from dashboard.", plan, list)
}
