package rest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	assistantApp "github.com/brokerdesk/bd-wap/assistant/application"
	inboxApp "github.com/brokerdesk/bd-wap/inbox/application"
	"github.com/brokerdesk/bd-wap/infrastructure/whatsapp"
	"github.com/brokerdesk/bd-wap/messaging"
	tenancyApp "github.com/brokerdesk/bd-wap/tenancy/application"
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
)

// WebhookConfig carries the knobs the webhook handler needs from the env.
type WebhookConfig struct {
	VerifyToken     string
	DefaultTenantID uint
}

// Webhook receives Cloud API deliveries. Processing failures never surface
// to the caller: the provider retries any non-2xx response, so the handler
// always acks and keeps errors in the logs.
type Webhook struct {
	Config    WebhookConfig
	Tenancy   *tenancyApp.TenancyService
	Inbox     *inboxApp.InboxService
	Assistant *assistantApp.AssistantService
	Sender    *whatsapp.Client
	Messages  tenancyDomain.MessageLogRepository
}

func InitRestWebhook(app fiber.Router, handler Webhook) Webhook {
	app.Get("/webhook/whatsapp", handler.Verify)
	app.Post("/webhook/whatsapp", handler.Receive)
	return handler
}

// Verify answers Meta's subscription handshake.
func (h *Webhook) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.Config.VerifyToken {
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	logrus.Warnf("[WEBHOOK] verification rejected, mode=%s", mode)
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive handles one webhook delivery and always acks with 200.
func (h *Webhook) Receive(c *fiber.Ctx) error {
	var payload whatsapp.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		logrus.Warnf("[WEBHOOK] unparseable delivery: %v", err)
		return ackReceived(c)
	}

	inbound, ok := whatsapp.ParseInbound(payload)
	if !ok {
		// Status callbacks and other non-message deliveries.
		return ackReceived(c)
	}

	if err := h.process(c.UserContext(), inbound); err != nil {
		logrus.Errorf("[WEBHOOK] failed to process message from %s: %v", inbound.From, err)
	}
	return ackReceived(c)
}

func ackReceived(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "received"})
}

func (h *Webhook) process(ctx context.Context, in whatsapp.Inbound) error {
	tenant, err := h.Tenancy.ResolveByNumber(ctx, in.To, h.Config.DefaultTenantID)
	if errors.Is(err, tenancyDomain.ErrTenantNotFound) {
		// First delivery on a fresh store provisions the default tenant.
		tenant, err = h.Tenancy.EnsureTenant(ctx, h.Config.DefaultTenantID)
	}
	if err != nil {
		return err
	}

	// Plan limits are re-applied on every message so a downgrade takes
	// effect immediately, whatever path wrote the flags.
	flags, err := h.Tenancy.Enforce(ctx, tenant.ID)
	if err != nil {
		return err
	}

	h.logMessage(ctx, tenant.ID, flags, &tenancyDomain.MessageLog{
		TenantID:  tenant.ID,
		From:      in.From,
		To:        in.To,
		Direction: tenancyDomain.DirectionInbound,
		Body:      in.Text,
		CreatedAt: time.Now(),
	})

	conversation, err := h.Inbox.TouchInbound(ctx, tenant.ID, in.From, in.ContactName)
	if err != nil {
		logrus.Warnf("[WEBHOOK] failed to touch conversation for %s: %v", in.From, err)
	}
	if !h.Inbox.ShouldAutoAnswer(conversation) {
		logrus.Debugf("[WEBHOOK] conversation with %s is human-handled, staying silent", in.From)
		return nil
	}

	reply := messaging.Route(messaging.Input{
		Flags: flags,
		Plan:  tenant.Plan,
		Text:  in.Text,
	})

	switch reply.Kind {
	case messaging.ReplyMenu:
		if err := h.Sender.SendInteractive(ctx, in.From, messaging.MenuPayload()); err != nil {
			return err
		}
		h.logOutbound(ctx, tenant.ID, flags, in, "[menu]")
		return nil
	case messaging.ReplyAssist:
		text := h.assistantReply(ctx, in)
		if err := h.Sender.SendText(ctx, in.From, text); err != nil {
			return err
		}
		h.logOutbound(ctx, tenant.ID, flags, in, text)
		return nil
	default:
		if err := h.Sender.SendText(ctx, in.From, reply.Text); err != nil {
			return err
		}
		h.logOutbound(ctx, tenant.ID, flags, in, reply.Text)
		return nil
	}
}

func (h *Webhook) assistantReply(ctx context.Context, in whatsapp.Inbound) string {
	if h.Assistant == nil {
		return messaging.FallbackText
	}
	text, err := h.Assistant.Reply(ctx, in.From, in.Text)
	if err != nil {
		logrus.Warnf("[WEBHOOK] assistant failed for %s: %v", in.From, err)
		return messaging.FallbackText
	}
	return text
}

func (h *Webhook) logOutbound(ctx context.Context, tenantID uint, flags map[tenancyDomain.FeatureKey]bool, in whatsapp.Inbound, body string) {
	h.logMessage(ctx, tenantID, flags, &tenancyDomain.MessageLog{
		TenantID:  tenantID,
		From:      in.To,
		To:        in.From,
		Direction: tenancyDomain.DirectionOutbound,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

// logMessage appends to the compliance log when the tenant has the feature;
// log failures are never allowed to break message handling.
func (h *Webhook) logMessage(ctx context.Context, tenantID uint, flags map[tenancyDomain.FeatureKey]bool, entry *tenancyDomain.MessageLog) {
	if h.Messages == nil || !flags[tenancyDomain.FeatureComplianceLog] {
		return
	}
	if err := h.Messages.Append(ctx, entry); err != nil {
		logrus.Warnf("[WEBHOOK] failed to append message log: %v", err)
	}
}
