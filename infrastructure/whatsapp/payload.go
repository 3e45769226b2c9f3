package whatsapp

import "strings"

// WebhookPayload is the nested envelope the Cloud API posts to the webhook:
// entry[].changes[].value.{messages,metadata,contacts}. Status callbacks
// arrive in the same shape with the messages array absent.
type WebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value ChangeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type ChangeValue struct {
	Metadata struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []struct {
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
		WaID string `json:"wa_id"`
	} `json:"contacts"`
	Messages []InboundMessage `json:"messages"`
}

type InboundMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive struct {
		Type      string `json:"type"`
		ListReply struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"list_reply"`
		ButtonReply struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
	} `json:"interactive"`
}

// Inbound is the normalized form the router consumes.
type Inbound struct {
	From        string // sender wa id
	To          string // display phone number of the receiving line
	ContactName string
	Text        string // trimmed text body or the selected row/button id
}

// ParseInbound extracts the first message from a webhook delivery. A payload
// without messages (status callbacks) yields ok=false and must be treated as
// a silent success by the caller.
func ParseInbound(payload WebhookPayload) (Inbound, bool) {
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return Inbound{}, false
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return Inbound{}, false
	}

	msg := value.Messages[0]
	in := Inbound{
		From: msg.From,
		To:   value.Metadata.DisplayPhoneNumber,
	}
	if len(value.Contacts) > 0 {
		in.ContactName = strings.TrimSpace(value.Contacts[0].Profile.Name)
	}

	switch msg.Type {
	case "text":
		in.Text = strings.TrimSpace(msg.Text.Body)
	case "interactive":
		switch msg.Interactive.Type {
		case "list_reply":
			in.Text = msg.Interactive.ListReply.ID
		case "button_reply":
			in.Text = msg.Interactive.ButtonReply.ID
		}
	}

	if in.From == "" || in.Text == "" {
		return Inbound{}, false
	}
	return in, true
}
