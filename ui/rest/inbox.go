package rest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	inboxApp "github.com/brokerdesk/bd-wap/inbox/application"
	inboxDomain "github.com/brokerdesk/bd-wap/inbox/domain"
	"github.com/brokerdesk/bd-wap/infrastructure/whatsapp"
	"github.com/brokerdesk/bd-wap/pkg/security"
	tenancyApp "github.com/brokerdesk/bd-wap/tenancy/application"
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
	"github.com/brokerdesk/bd-wap/ui/rest/middleware"
	"github.com/brokerdesk/bd-wap/ui/rest/views"
	"github.com/brokerdesk/bd-wap/validations"
)

// InboxConfig carries what the inbox pages need from the env.
type InboxConfig struct {
	SessionSecret   []byte
	DefaultTenantID uint
}

// Inbox serves the agent-facing pages: login, the conversation list and the
// conversation view with manual replies and handoff controls.
type Inbox struct {
	Config   InboxConfig
	Service  *inboxApp.InboxService
	Tenancy  *tenancyApp.TenancyService
	Messages tenancyDomain.MessageLogRepository
	Sender   *whatsapp.Client
}

func InitRestInbox(app fiber.Router, handler Inbox) Inbox {
	app.Get("/inbox/login", handler.LoginForm)
	app.Post("/inbox/login", handler.Login)
	app.Post("/inbox/logout", handler.Logout)

	authed := app.Group("/inbox", middleware.AgentAuth(handler.Config.SessionSecret))
	authed.Get("/", handler.List)
	authed.Get("/conversations/:id", handler.Conversation)
	authed.Post("/conversations/:id/reply", handler.Reply)
	authed.Post("/conversations/:id/assign", handler.Assign)
	authed.Post("/conversations/:id/mode", handler.SetMode)

	return handler
}

func (h *Inbox) LoginForm(c *fiber.Ctx) error {
	if token := c.Cookies(middleware.SessionCookieName); token != "" {
		if _, err := security.ValidateAgentToken(h.Config.SessionSecret, token); err == nil {
			return c.Redirect("/inbox", fiber.StatusFound)
		}
	}
	return views.Render(c, "inbox_login", fiber.Map{})
}

func (h *Inbox) Login(c *fiber.Ctx) error {
	var request inboxDomain.LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return views.Render(c, "inbox_login", fiber.Map{"Error": "invalid form"})
	}
	if err := validations.ValidateLogin(c.UserContext(), request); err != nil {
		return views.Render(c, "inbox_login", fiber.Map{"Error": "username and password are required"})
	}

	agent, err := h.Service.Login(c.UserContext(), request.Username, request.Password)
	if err != nil {
		if errors.Is(err, inboxDomain.ErrInvalidCredentials) {
			return views.Render(c, "inbox_login", fiber.Map{"Error": "invalid username or password"})
		}
		return internalError(c, err)
	}

	token, err := security.GenerateAgentToken(h.Config.SessionSecret, agent.ID, agent.Username)
	if err != nil {
		return internalError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return c.Redirect("/inbox", fiber.StatusFound)
}

func (h *Inbox) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookieName)
	return c.Redirect("/inbox/login", fiber.StatusFound)
}

type conversationRow struct {
	ID           uint
	ContactWaID  string
	ContactName  string
	Mode         inboxDomain.ConversationMode
	AssigneeName string
	LastActivity string
}

func (h *Inbox) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	claims := middleware.AgentFromCtx(c)

	tenantID := h.Config.DefaultTenantID
	if q := c.QueryInt("tenant_id"); q > 0 {
		tenantID = uint(q)
	}

	conversations, err := h.Service.Conversations(ctx, tenantID)
	if err != nil {
		return internalError(c, err)
	}

	rows := make([]conversationRow, 0, len(conversations))
	for _, conv := range conversations {
		rows = append(rows, conversationRow{
			ID:           conv.ID,
			ContactWaID:  conv.ContactWaID,
			ContactName:  conv.ContactName,
			Mode:         conv.Mode,
			AssigneeName: h.assigneeName(c, conv.AssigneeID),
			LastActivity: conv.LastMessageAt.Format("02 Jan 15:04"),
		})
	}

	agentName := ""
	if claims != nil {
		agentName = claims.Username
	}
	return views.Render(c, "inbox_list", fiber.Map{
		"AgentName":     agentName,
		"Conversations": rows,
	})
}

type messageRow struct {
	Direction string
	Body      string
	When      string
}

func (h *Inbox) Conversation(c *fiber.Ctx) error {
	ctx := c.UserContext()

	conversation, err := h.conversationFromParams(c)
	if err != nil {
		return notFound(c, err.Error())
	}

	var rows []messageRow
	if h.Messages != nil {
		logs, err := h.Messages.ListByContact(ctx, conversation.TenantID, conversation.ContactWaID, 0)
		if err != nil {
			logrus.Warnf("[INBOX] failed to load messages for %s: %v", conversation.ContactWaID, err)
		}
		for _, entry := range logs {
			rows = append(rows, messageRow{
				Direction: entry.Direction,
				Body:      entry.Body,
				When:      entry.CreatedAt.Format("02 Jan 15:04"),
			})
		}
	}

	return views.Render(c, "inbox_conversation", fiber.Map{
		"Conversation": conversation,
		"AssigneeName": h.assigneeName(c, conversation.AssigneeID),
		"Messages":     rows,
	})
}

func (h *Inbox) Reply(c *fiber.Ctx) error {
	ctx := c.UserContext()

	conversation, err := h.conversationFromParams(c)
	if err != nil {
		return notFound(c, err.Error())
	}

	var request inboxDomain.AgentReplyRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := validations.ValidateAgentReply(ctx, request); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.Sender.SendText(ctx, conversation.ContactWaID, request.Text); err != nil {
		return internalError(c, err)
	}

	// Manual replies respect the same compliance-log gate as bot replies.
	if h.Messages != nil && h.Tenancy != nil {
		enabled, err := h.Tenancy.IsEnabled(ctx, conversation.TenantID, tenancyDomain.FeatureComplianceLog)
		if err == nil && enabled {
			tenant, _ := h.Tenancy.Tenant(ctx, conversation.TenantID)
			from := ""
			if tenant != nil {
				from = tenant.WhatsappNumber
			}
			entry := &tenancyDomain.MessageLog{
				TenantID:  conversation.TenantID,
				From:      from,
				To:        conversation.ContactWaID,
				Direction: tenancyDomain.DirectionOutbound,
				Body:      request.Text,
				CreatedAt: time.Now(),
			}
			if err := h.Messages.Append(ctx, entry); err != nil {
				logrus.Warnf("[INBOX] failed to log agent reply: %v", err)
			}
		}
	}

	return c.Redirect(fmt.Sprintf("/inbox/conversations/%d", conversation.ID), fiber.StatusFound)
}

func (h *Inbox) Assign(c *fiber.Ctx) error {
	claims := middleware.AgentFromCtx(c)
	if claims == nil {
		return c.Redirect("/inbox/login", fiber.StatusFound)
	}

	conversation, err := h.conversationFromParams(c)
	if err != nil {
		return notFound(c, err.Error())
	}

	if err := h.Service.AssignToMe(c.UserContext(), conversation.ID, claims.AgentID); err != nil {
		return internalError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/inbox/conversations/%d", conversation.ID), fiber.StatusFound)
}

func (h *Inbox) SetMode(c *fiber.Ctx) error {
	conversation, err := h.conversationFromParams(c)
	if err != nil {
		return notFound(c, err.Error())
	}

	var request inboxDomain.SetModeRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid payload")
	}

	if err := h.Service.SetMode(c.UserContext(), conversation.ID, inboxDomain.ConversationMode(request.Mode)); err != nil {
		if errors.Is(err, inboxDomain.ErrInvalidMode) {
			return badRequest(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/inbox/conversations/%d", conversation.ID), fiber.StatusFound)
}

func (h *Inbox) conversationFromParams(c *fiber.Ctx) (*inboxDomain.Conversation, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, inboxDomain.ErrConversationNotFound
	}
	return h.Service.Conversation(c.UserContext(), uint(id))
}

func (h *Inbox) assigneeName(c *fiber.Ctx, agentID *uint) string {
	if agentID == nil {
		return ""
	}
	agent, err := h.Service.AgentByID(c.UserContext(), *agentID)
	if err != nil {
		return ""
	}
	if agent.DisplayName != "" {
		return agent.DisplayName
	}
	return agent.Username
}
