package rest

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	settingsApp "github.com/brokerdesk/bd-wap/core/settings/application"
	settingsDomain "github.com/brokerdesk/bd-wap/core/settings/domain"
	"github.com/brokerdesk/bd-wap/pkg/utils"
	tenancyApp "github.com/brokerdesk/bd-wap/tenancy/application"
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
	"github.com/brokerdesk/bd-wap/validations"
)

// Admin exposes tenant, plan, flag and settings management. Every route
// sits behind the admin token middleware.
type Admin struct {
	Service  *tenancyApp.TenancyService
	Settings *settingsApp.SettingsService
}

func InitRestAdmin(app fiber.Router, service *tenancyApp.TenancyService, settings *settingsApp.SettingsService) Admin {
	handler := Admin{Service: service, Settings: settings}

	app.Get("/tenants", handler.ListTenants)
	app.Post("/tenants", handler.CreateTenant)
	app.Get("/tenants/:id/flags", handler.ListFlags)
	app.Post("/tenants/:id/plan", handler.SetPlan)
	app.Post("/tenants/:id/flags", handler.SetFlag)
	app.Get("/settings", handler.GetSettings)
	app.Post("/settings", handler.UpdateSettings)

	return handler
}

// isFormPost distinguishes dashboard form submissions from API clients.
func isFormPost(c *fiber.Ctx) bool {
	ct := string(c.Request().Header.ContentType())
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}

// backToDashboard 303-redirects a form submission to the dashboard, keeping
// the token so the guarded page still opens.
func backToDashboard(c *fiber.Ctx) error {
	return c.Redirect("/dashboard?token="+url.QueryEscape(c.Query("token")), fiber.StatusSeeOther)
}

func (h *Admin) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.Service.ListTenants(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Tenants retrieved",
		Results: tenants,
	})
}

func (h *Admin) CreateTenant(c *fiber.Ctx) error {
	var request tenancyDomain.CreateTenantRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := validations.ValidateCreateTenant(c.UserContext(), request); err != nil {
		return badRequest(c, err.Error())
	}

	tenant, err := h.Service.CreateTenant(c.UserContext(), request.Name, tenancyDomain.Plan(request.Plan), request.WhatsappNumber)
	if err != nil {
		if errors.Is(err, tenancyDomain.ErrInvalidPlan) {
			return badRequest(c, err.Error())
		}
		return internalError(c, err)
	}

	if isFormPost(c) {
		return backToDashboard(c)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Tenant created",
		Results: tenant,
	})
}

func (h *Admin) ListFlags(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return badRequest(c, "invalid tenant id")
	}

	tenant, err := h.Service.Tenant(c.UserContext(), tenantID)
	if err != nil {
		if errors.Is(err, tenancyDomain.ErrTenantNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}

	// The admin view always shows the enforced state.
	flags, err := h.Service.Enforce(c.UserContext(), tenantID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Flags retrieved",
		Results: fiber.Map{
			"tenant": tenant,
			"flags":  flags,
		},
	})
}

func (h *Admin) SetPlan(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return badRequest(c, "invalid tenant id")
	}

	var request tenancyDomain.SetPlanRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := validations.ValidateSetPlan(c.UserContext(), request); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.Service.SetPlan(c.UserContext(), tenantID, tenancyDomain.Plan(request.Plan)); err != nil {
		switch {
		case errors.Is(err, tenancyDomain.ErrInvalidPlan):
			return badRequest(c, err.Error())
		case errors.Is(err, tenancyDomain.ErrTenantNotFound):
			return notFound(c, err.Error())
		default:
			return internalError(c, err)
		}
	}

	if isFormPost(c) {
		return backToDashboard(c)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Plan updated",
	})
}

func (h *Admin) SetFlag(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return badRequest(c, "invalid tenant id")
	}

	var request tenancyDomain.SetFlagRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := validations.ValidateSetFlag(c.UserContext(), request); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.Service.SetFlag(c.UserContext(), tenantID, tenancyDomain.FeatureKey(request.Key), request.Enabled); err != nil {
		switch {
		case errors.Is(err, tenancyDomain.ErrInvalidFeatureKey):
			return badRequest(c, err.Error())
		case errors.Is(err, tenancyDomain.ErrTenantNotFound):
			return notFound(c, err.Error())
		default:
			return internalError(c, err)
		}
	}

	if isFormPost(c) {
		return backToDashboard(c)
	}

	// Report the state after enforcement, which may have kept the flag off.
	flags, err := h.Service.Flags(c.UserContext(), tenantID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Flag updated",
		Results: flags,
	})
}

func (h *Admin) GetSettings(c *fiber.Ctx) error {
	settings, err := h.Settings.GetDynamicSettings(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings retrieved",
		Results: settings,
	})
}

func (h *Admin) UpdateSettings(c *fiber.Ctx) error {
	var request settingsDomain.UpdateSettingsRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid payload")
	}

	ctx := c.UserContext()
	if err := h.Settings.SetSystemPrompt(ctx, request.AssistantSystemPrompt); err != nil {
		return internalError(c, err)
	}
	if err := h.Settings.SetAssistantModel(ctx, request.AssistantModel); err != nil {
		return internalError(c, err)
	}
	if err := h.Settings.SetDashboardTitle(ctx, request.DashboardTitle); err != nil {
		return internalError(c, err)
	}

	if isFormPost(c) {
		return backToDashboard(c)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings updated",
	})
}

func parseTenantID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
		Status:  400,
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(utils.ResponseData{
		Status:  404,
		Code:    "NOT_FOUND_ERROR",
		Message: message,
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(utils.ResponseData{
		Status:  500,
		Code:    "INTERNAL_SERVER_ERROR",
		Message: err.Error(),
	})
}
