package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerdesk/bd-wap/assistant/domain"
	"github.com/brokerdesk/bd-wap/assistant/repository"
)

type fakeProvider struct {
	lastReq domain.ChatRequest
	reply   string
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	p.lastReq = req
	if p.err != nil {
		return domain.ChatResponse{}, p.err
	}
	return domain.ChatResponse{Text: p.reply}, nil
}

type staticSettings struct {
	prompt string
	model  string
}

func (s staticSettings) AssistantPrompt() string { return s.prompt }
func (s staticSettings) AssistantModel() string  { return s.model }

func TestAssistantReply_ThreadsHistory(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{reply: "markets closed mixed today"}
	history := repository.NewMemoryHistoryStore(10, 10)
	svc := NewAssistantService(provider, history, nil, Config{})

	out, err := svc.Reply(ctx, "919900000001", "how did markets do?")
	require.NoError(t, err)
	assert.Equal(t, "markets closed mixed today", out)
	assert.Empty(t, provider.lastReq.History)

	_, err = svc.Reply(ctx, "919900000001", "and tomorrow?")
	require.NoError(t, err)
	require.Len(t, provider.lastReq.History, 2)
	assert.Equal(t, "how did markets do?", provider.lastReq.History[0].Text)
	assert.Equal(t, domain.RoleAssistant, provider.lastReq.History[1].Role)
}

func TestAssistantReply_ProviderErrorSurfaces(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	history := repository.NewMemoryHistoryStore(10, 10)
	svc := NewAssistantService(provider, history, nil, Config{})

	_, err := svc.Reply(context.Background(), "contact", "hello")
	require.Error(t, err)

	// A failed exchange must not pollute the history.
	turns, loadErr := history.Load(context.Background(), "contact")
	require.NoError(t, loadErr)
	assert.Empty(t, turns)
}

func TestAssistantReply_PromptOverride(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), staticSettings{prompt: "speak only in haiku"}, Config{})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.NoError(t, err)
	assert.Equal(t, "speak only in haiku", provider.lastReq.SystemPrompt)
}

func TestAssistantReply_EmptyPromptFallsBack(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), staticSettings{prompt: "   "}, Config{})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.NoError(t, err)
	assert.Contains(t, provider.lastReq.SystemPrompt, "BrokerDesk WA")
}

func TestAssistantReply_ModelFromConfig(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), nil, Config{Model: "gpt-4.1"})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", provider.lastReq.Model)
}

func TestAssistantReply_StoredModelOverridesConfig(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	settings := staticSettings{model: "gemini-2.5-pro"}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), settings, Config{Model: "gpt-4.1"})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", provider.lastReq.Model)
}

func TestAssistantReply_NoModelLeavesProviderDefault(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), staticSettings{}, Config{})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.NoError(t, err)
	assert.Empty(t, provider.lastReq.Model)
}

func TestAssistantReply_ConfigPromptBeatsBuiltin(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), nil, Config{SystemPrompt: "you are a test bot"})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.NoError(t, err)
	assert.Equal(t, "you are a test bot", provider.lastReq.SystemPrompt)
}

func TestAssistantReply_EmptyProviderReplyIsError(t *testing.T) {
	provider := &fakeProvider{reply: "   "}
	svc := NewAssistantService(provider, repository.NewMemoryHistoryStore(10, 10), nil, Config{})

	_, err := svc.Reply(context.Background(), "contact", "hi")
	require.Error(t, err)
}

func TestAssistantForget(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{reply: "reply"}
	history := repository.NewMemoryHistoryStore(10, 10)
	svc := NewAssistantService(provider, history, nil, Config{})

	_, err := svc.Reply(ctx, "contact", "hello")
	require.NoError(t, err)
	require.NoError(t, svc.Forget(ctx, "contact"))

	turns, err := history.Load(ctx, "contact")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
