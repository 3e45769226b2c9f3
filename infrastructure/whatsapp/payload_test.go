package whatsapp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decodePayload(t *testing.T, raw string) WebhookPayload {
	t.Helper()
	var payload WebhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return payload
}

func TestParseInbound_TextMessage(t *testing.T) {
	payload := decodePayload(t, `{
		"entry": [{
			"changes": [{
				"value": {
					"metadata": {"display_phone_number": "15550001111", "phone_number_id": "42"},
					"contacts": [{"profile": {"name": "Priya "}, "wa_id": "919900000001"}],
					"messages": [{
						"from": "919900000001",
						"id": "wamid.abc",
						"type": "text",
						"text": {"body": "  Market Brief  "}
					}]
				}
			}]
		}]
	}`)

	in, ok := ParseInbound(payload)
	assert.True(t, ok)
	assert.Equal(t, "919900000001", in.From)
	assert.Equal(t, "15550001111", in.To)
	assert.Equal(t, "Priya", in.ContactName)
	assert.Equal(t, "Market Brief", in.Text)
}

func TestParseInbound_ListReplyUsesRowID(t *testing.T) {
	payload := decodePayload(t, `{
		"entry": [{
			"changes": [{
				"value": {
					"metadata": {"display_phone_number": "15550001111"},
					"messages": [{
						"from": "919900000001",
						"type": "interactive",
						"interactive": {
							"type": "list_reply",
							"list_reply": {"id": "RISK_ALERTS", "title": "Risk Radar"}
						}
					}]
				}
			}]
		}]
	}`)

	in, ok := ParseInbound(payload)
	assert.True(t, ok)
	assert.Equal(t, "RISK_ALERTS", in.Text)
}

func TestParseInbound_ButtonReplyUsesButtonID(t *testing.T) {
	payload := decodePayload(t, `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "919900000001",
						"type": "interactive",
						"interactive": {
							"type": "button_reply",
							"button_reply": {"id": "SETTINGS", "title": "Settings"}
						}
					}]
				}
			}]
		}]
	}`)

	in, ok := ParseInbound(payload)
	assert.True(t, ok)
	assert.Equal(t, "SETTINGS", in.Text)
}

func TestParseInbound_StatusCallbackIsNotAMessage(t *testing.T) {
	payload := decodePayload(t, `{
		"entry": [{
			"changes": [{
				"value": {
					"metadata": {"display_phone_number": "15550001111"},
					"statuses": [{"id": "wamid.abc", "status": "delivered"}]
				}
			}]
		}]
	}`)

	_, ok := ParseInbound(payload)
	assert.False(t, ok)
}

func TestParseInbound_EmptyEnvelope(t *testing.T) {
	_, ok := ParseInbound(WebhookPayload{})
	assert.False(t, ok)

	payload := decodePayload(t, `{"entry": [{"changes": []}]}`)
	_, ok = ParseInbound(payload)
	assert.False(t, ok)
}

func TestParseInbound_UnsupportedTypeSkipped(t *testing.T) {
	payload := decodePayload(t, `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{"from": "919900000001", "type": "image"}]
				}
			}]
		}]
	}`)

	_, ok := ParseInbound(payload)
	assert.False(t, ok)
}
