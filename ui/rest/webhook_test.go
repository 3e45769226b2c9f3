package rest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	inboxApp "github.com/brokerdesk/bd-wap/inbox/application"
	inboxDomain "github.com/brokerdesk/bd-wap/inbox/domain"
	inboxRepo "github.com/brokerdesk/bd-wap/inbox/repository"
	"github.com/brokerdesk/bd-wap/infrastructure/whatsapp"
	tenancyApp "github.com/brokerdesk/bd-wap/tenancy/application"
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
	tenancyRepo "github.com/brokerdesk/bd-wap/tenancy/repository"
)

var webhookTestDBSeq int

type webhookFixture struct {
	app      *fiber.App
	tenancy  *tenancyApp.TenancyService
	inbox    *inboxApp.InboxService
	flags    *tenancyRepo.FlagGormRepository
	messages tenancyDomain.MessageLogRepository
	tenant   *tenancyDomain.Tenant
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	ctx := context.Background()

	webhookTestDBSeq++
	dsn := fmt.Sprintf("file:webhook_test_%d?mode=memory&cache=shared", webhookTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	tenantRepo := tenancyRepo.NewTenantGormRepository(db)
	flagRepo := tenancyRepo.NewFlagGormRepository(db)
	msgRepo := tenancyRepo.NewMessageLogGormRepository(db)
	conversationRepo := inboxRepo.NewConversationGormRepository(db)
	agentRepo := inboxRepo.NewAgentGormRepository(db)

	require.NoError(t, tenantRepo.InitSchema(ctx))
	require.NoError(t, flagRepo.InitSchema(ctx))
	require.NoError(t, msgRepo.InitSchema(ctx))
	require.NoError(t, conversationRepo.InitSchema(ctx))
	require.NoError(t, agentRepo.InitSchema(ctx))

	tenancyService := tenancyApp.NewTenancyService(tenantRepo, flagRepo)
	tenant, err := tenancyService.EnsureTenant(ctx, 1)
	require.NoError(t, err)

	inboxService := inboxApp.NewInboxService(conversationRepo, agentRepo)

	app := fiber.New()
	InitRestWebhook(app, Webhook{
		Config: WebhookConfig{
			VerifyToken:     "verify-secret",
			DefaultTenantID: tenant.ID,
		},
		Tenancy: tenancyService,
		Inbox:   inboxService,
		// Sender without credentials skips the HTTP call; outbound traffic
		// is observed through the compliance log instead.
		Sender:   whatsapp.NewClient(whatsapp.Config{}),
		Messages: msgRepo,
	})

	return &webhookFixture{
		app:      app,
		tenancy:  tenancyService,
		inbox:    inboxService,
		flags:    flagRepo,
		messages: msgRepo,
		tenant:   tenant,
	}
}

func inboundTextPayload(text string) []byte {
	return []byte(fmt.Sprintf(`{
		"entry": [{
			"changes": [{
				"value": {
					"metadata": {"display_phone_number": "15550001111"},
					"contacts": [{"profile": {"name": "Priya"}, "wa_id": "919900000001"}],
					"messages": [{"from": "919900000001", "type": "text", "text": {"body": %q}}]
				}
			}]
		}]
	}`, text))
}

func (f *webhookFixture) deliver(t *testing.T, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (f *webhookFixture) lastOutbound(t *testing.T) *tenancyDomain.MessageLog {
	t.Helper()
	logs, err := f.messages.ListByTenant(context.Background(), f.tenant.ID, 50)
	require.NoError(t, err)
	for _, entry := range logs {
		if entry.Direction == tenancyDomain.DirectionOutbound {
			return entry
		}
	}
	return nil
}

func TestWebhookVerify_Handshake(t *testing.T) {
	f := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=12345", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, "12345", buf.String())
}

func TestWebhookVerify_WrongTokenForbidden(t *testing.T) {
	f := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebhookReceive_StatusCallbackAcked(t *testing.T) {
	f := newWebhookFixture(t)

	resp := f.deliver(t, []byte(`{"entry": [{"changes": [{"value": {"statuses": [{"status": "delivered"}]}}]}]}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	count, err := f.messages.CountByTenant(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "status callbacks must not touch the log")
}

func TestWebhookReceive_MalformedBodyAcked(t *testing.T) {
	f := newWebhookFixture(t)

	resp := f.deliver(t, []byte(`{not json`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookReceive_GreetingSendsMenu(t *testing.T) {
	f := newWebhookFixture(t)

	resp := f.deliver(t, inboundTextPayload("hi"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := f.lastOutbound(t)
	require.NotNil(t, out)
	assert.Equal(t, "[menu]", out.Body)
}

func TestWebhookReceive_LockedFeatureNamesTier(t *testing.T) {
	f := newWebhookFixture(t)

	resp := f.deliver(t, inboundTextPayload("RISK_ALERTS"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := f.lastOutbound(t)
	require.NotNil(t, out)
	assert.Contains(t, out.Body, "Pro")
	assert.NotContains(t, out.Body, "Client A", "locked features must not leak content")
}

func TestWebhookReceive_EnforcesPlanOnDelivery(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)

	// Simulate a stale flag written behind the service's back.
	require.NoError(t, f.flags.Set(ctx, f.tenant.ID, tenancyDomain.FeatureRiskRadar, true))

	resp := f.deliver(t, inboundTextPayload("RISK_ALERTS"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := f.lastOutbound(t)
	require.NotNil(t, out)
	assert.Contains(t, out.Body, "Pro", "starter tenant must get the locked reply even with a stale enabled flag")

	enabled, err := f.flags.IsEnabled(ctx, f.tenant.ID, tenancyDomain.FeatureRiskRadar)
	require.NoError(t, err)
	assert.False(t, enabled, "delivery must persist the downgrade")
}

func TestWebhookReceive_RiskyWordingRewritten(t *testing.T) {
	f := newWebhookFixture(t)

	resp := f.deliver(t, inboundTextPayload("guaranteed returns!!"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := f.lastOutbound(t)
	require.NotNil(t, out)
	assert.Contains(t, out.Body, "SEBI-safe")
	assert.NotContains(t, out.Body, "guaranteed")
}

func TestWebhookReceive_HumanModeStaysSilent(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)

	conv, err := f.inbox.TouchInbound(ctx, f.tenant.ID, "919900000001", "Priya")
	require.NoError(t, err)
	require.NoError(t, f.inbox.SetMode(ctx, conv.ID, inboxDomain.ModeHuman))

	resp := f.deliver(t, inboundTextPayload("hi"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Nil(t, f.lastOutbound(t), "human-handled conversations get no bot reply")
}

func TestWebhookReceive_AssistantFallbackWithoutProvider(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)

	// Upgrade so free text routes to the assistant branch.
	require.NoError(t, f.tenancy.SetPlan(ctx, f.tenant.ID, tenancyDomain.PlanElite))
	require.NoError(t, f.tenancy.SetFlag(ctx, f.tenant.ID, tenancyDomain.FeatureClientAI, true))

	resp := f.deliver(t, inboundTextPayload("what should I tell clients holding Reliance?"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := f.lastOutbound(t)
	require.NotNil(t, out)
	assert.True(t, strings.Contains(out.Body, "Menu"), "no provider configured falls back to the menu hint")
}

func TestWebhookReceive_ProvisionsDefaultTenantOnFirstDelivery(t *testing.T) {
	ctx := context.Background()

	webhookTestDBSeq++
	dsn := fmt.Sprintf("file:webhook_test_%d?mode=memory&cache=shared", webhookTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	tenantRepo := tenancyRepo.NewTenantGormRepository(db)
	flagRepo := tenancyRepo.NewFlagGormRepository(db)
	conversationRepo := inboxRepo.NewConversationGormRepository(db)
	agentRepo := inboxRepo.NewAgentGormRepository(db)
	require.NoError(t, tenantRepo.InitSchema(ctx))
	require.NoError(t, flagRepo.InitSchema(ctx))
	require.NoError(t, conversationRepo.InitSchema(ctx))
	require.NoError(t, agentRepo.InitSchema(ctx))

	tenancyService := tenancyApp.NewTenancyService(tenantRepo, flagRepo)

	app := fiber.New()
	InitRestWebhook(app, Webhook{
		Config: WebhookConfig{
			VerifyToken:     "verify-secret",
			DefaultTenantID: 42,
		},
		Tenancy: tenancyService,
		Inbox:   inboxApp.NewInboxService(conversationRepo, agentRepo),
		Sender:  whatsapp.NewClient(whatsapp.Config{}),
	})

	// No tenant exists yet; the first delivery must create the default one.
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", bytes.NewReader(inboundTextPayload("hi")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tenant, err := tenancyService.Tenant(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, tenancyDomain.PlanStarter, tenant.Plan)
}
