package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultSendTimeout = 20 * time.Second

// httpClient is package-level so tests can swap the transport. The send
// deadline comes from the per-request context.
var httpClient = &http.Client{}

// Client talks to the WhatsApp Cloud API for one phone number.
type Client struct {
	AccessToken   string
	PhoneNumberID string
	GraphBaseURL  string
	GraphVersion  string
	MaxTextLength int
	SendTimeout   time.Duration
}

// Config mirrors the relevant application settings.
type Config struct {
	AccessToken   string
	PhoneNumberID string
	GraphBaseURL  string
	GraphVersion  string
	MaxTextLength int
	SendTimeout   time.Duration
}

// NewClient builds a Cloud API client. Missing credentials are tolerated:
// sends become logged no-ops so local development works without a Meta app.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.GraphBaseURL), "/")
	if base == "" {
		base = "https://graph.facebook.com"
	}
	version := strings.TrimSpace(cfg.GraphVersion)
	if version == "" {
		version = "v20.0"
	}
	maxLen := cfg.MaxTextLength
	if maxLen <= 0 {
		maxLen = 4096
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Client{
		AccessToken:   strings.TrimSpace(cfg.AccessToken),
		PhoneNumberID: strings.TrimSpace(cfg.PhoneNumberID),
		GraphBaseURL:  base,
		GraphVersion:  version,
		MaxTextLength: maxLen,
		SendTimeout:   timeout,
	}
}

func (c *Client) configured() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.GraphBaseURL, c.GraphVersion, c.PhoneNumberID)
}

// SendText sends a plain text message, truncating the body to the provider
// limit first. Failures are returned, never retried.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	if !c.configured() {
		logrus.Warnf("[WHATSAPP] credentials missing, skipping text send to %s", to)
		return nil
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": TruncateText(text, c.MaxTextLength)},
	}
	return c.post(ctx, payload)
}

// SendInteractive sends a prebuilt interactive payload (the list menu),
// merged with the addressing fields.
func (c *Client) SendInteractive(ctx context.Context, to string, interactive map[string]any) error {
	if !c.configured() {
		logrus.Warnf("[WHATSAPP] credentials missing, skipping interactive send to %s", to)
		return nil
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
	}
	for k, v := range interactive {
		payload[k] = v
	}
	return c.post(ctx, payload)
}

func (c *Client) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if c.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.SendTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

// TruncateText caps a body at max runes without splitting a character.
func TruncateText(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
