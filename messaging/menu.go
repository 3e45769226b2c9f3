package messaging

// MenuPayload is the interactive list message offered on any greeting. The
// shape follows the Cloud API "interactive" object: type/header/body/footer
// and one section of rows whose ids feed the dispatch table.
func MenuPayload() map[string]any {
	return map[string]any{
		"type": "interactive",
		"interactive": map[string]any{
			"type":   "list",
			"header": map[string]any{"type": "text", "text": "BrokerDesk WA"},
			"body":   map[string]any{"text": "Please choose an option 👇"},
			"footer": map[string]any{"text": "WhatsApp Control Room"},
			"action": map[string]any{
				"button": "Menu",
				"sections": []map[string]any{{
					"title": "Main Menu",
					"rows": []map[string]any{
						{"id": CmdMarketBrief, "title": "Today's Market Brief"},
						{"id": CmdWhyMarketMoved, "title": "Why Market Moved"},
						{"id": CmdRiskAlerts, "title": "Client Risk Alerts"},
						{"id": CmdCallPriority, "title": "Who Should I Call Now"},
						{"id": CmdSebiAdvisory, "title": "SEBI-safe Advisory"},
						{"id": CmdClientAI, "title": "Client Query Assistant"},
						{"id": CmdCallSummary, "title": "Call & Activity Summaries"},
						{"id": CmdSettings, "title": "Settings / Features"},
					},
				}},
			},
		},
	}
}
