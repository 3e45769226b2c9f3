package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brokerdesk/bd-wap/assistant/domain"
)

const defaultSystemPrompt = `You are BrokerDesk WA, a concise assistant for a stock brokerage's WhatsApp line.
Answer questions about markets, portfolios and brokerage services in short plain-text messages.
Never promise, guarantee or assure any investment return. Always phrase outcomes as subject to market risk.
If you are unsure, say so and suggest speaking to a human advisor.`

// defaultReplyTimeout bounds a single provider round trip.
const defaultReplyTimeout = 30 * time.Second

// SettingsSource supplies runtime overrides for the system prompt and the
// model. Empty strings fall back to the configured, then built-in defaults.
type SettingsSource interface {
	AssistantPrompt() string
	AssistantModel() string
}

// Config carries the env-level assistant defaults. Stored settings override
// these at reply time.
type Config struct {
	Model        string
	SystemPrompt string
	ReplyTimeout time.Duration
}

// AssistantService turns a contact's free-text message into an LLM reply,
// threading the bounded per-contact history through the provider.
type AssistantService struct {
	provider domain.AIProvider
	history  domain.HistoryStore
	settings SettingsSource
	config   Config
	timeout  time.Duration
}

func NewAssistantService(provider domain.AIProvider, history domain.HistoryStore, settings SettingsSource, cfg Config) *AssistantService {
	timeout := cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = defaultReplyTimeout
	}
	return &AssistantService{
		provider: provider,
		history:  history,
		settings: settings,
		config:   cfg,
		timeout:  timeout,
	}
}

func (s *AssistantService) ProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

func (s *AssistantService) systemPrompt() string {
	if s.settings != nil {
		if p := strings.TrimSpace(s.settings.AssistantPrompt()); p != "" {
			return p
		}
	}
	if p := strings.TrimSpace(s.config.SystemPrompt); p != "" {
		return p
	}
	return defaultSystemPrompt
}

// model resolves the stored override first, then the configured default.
// Empty means the provider picks its own default.
func (s *AssistantService) model() string {
	if s.settings != nil {
		if m := strings.TrimSpace(s.settings.AssistantModel()); m != "" {
			return m
		}
	}
	return strings.TrimSpace(s.config.Model)
}

// Reply answers userText for the given contact and records both turns in the
// history store. History failures are logged but never block the reply.
func (s *AssistantService) Reply(ctx context.Context, contactID, userText string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("no assistant provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	history, err := s.history.Load(ctx, contactID)
	if err != nil {
		logrus.Warnf("[ASSISTANT] failed to load history for %s: %v", contactID, err)
		history = nil
	}

	resp, err := s.provider.Chat(ctx, domain.ChatRequest{
		SystemPrompt: s.systemPrompt(),
		History:      history,
		UserText:     userText,
		Model:        s.model(),
	})
	if err != nil {
		return "", fmt.Errorf("assistant chat failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("assistant returned an empty reply")
	}

	if err := s.history.Append(ctx, contactID,
		domain.ChatTurn{Role: domain.RoleUser, Text: userText},
		domain.ChatTurn{Role: domain.RoleAssistant, Text: text},
	); err != nil {
		logrus.Warnf("[ASSISTANT] failed to record history for %s: %v", contactID, err)
	}

	return text, nil
}

// Forget drops the stored conversation for a contact.
func (s *AssistantService) Forget(ctx context.Context, contactID string) error {
	return s.history.Clear(ctx, contactID)
}
