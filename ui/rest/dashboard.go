package rest

import (
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	settingsApp "github.com/brokerdesk/bd-wap/core/settings/application"
	tenancyApp "github.com/brokerdesk/bd-wap/tenancy/application"
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
	"github.com/brokerdesk/bd-wap/ui/rest/views"
)

// Dashboard renders the operator overview: every tenant with its plan,
// enforced flag state and message volume.
type Dashboard struct {
	Tenancy  *tenancyApp.TenancyService
	Messages tenancyDomain.MessageLogRepository
	Settings *settingsApp.SettingsService
}

func InitRestDashboard(app fiber.Router, handler Dashboard) Dashboard {
	app.Get("/", handler.Show)
	return handler
}

type dashboardFlag struct {
	Key     string
	Enabled bool
}

type dashboardTenant struct {
	ID             uint
	Name           string
	WhatsappNumber string
	Plan           tenancyDomain.Plan
	Flags          []dashboardFlag
	MessageCount   int64
	LastActivity   string
}

func (h *Dashboard) Show(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tenants, err := h.Tenancy.ListTenants(ctx)
	if err != nil {
		return internalError(c, err)
	}

	rows := make([]dashboardTenant, 0, len(tenants))
	for _, tenant := range tenants {
		flags, err := h.Tenancy.Enforce(ctx, tenant.ID)
		if err != nil {
			return internalError(c, err)
		}

		flagRows := make([]dashboardFlag, 0, len(flags))
		for _, key := range tenancyDomain.AllFeatureKeys() {
			flagRows = append(flagRows, dashboardFlag{Key: string(key), Enabled: flags[key]})
		}
		sort.Slice(flagRows, func(i, j int) bool { return flagRows[i].Key < flagRows[j].Key })

		row := dashboardTenant{
			ID:             tenant.ID,
			Name:           tenant.Name,
			WhatsappNumber: tenant.WhatsappNumber,
			Plan:           tenant.Plan,
			Flags:          flagRows,
			LastActivity:   "never",
		}

		if h.Messages != nil {
			if count, err := h.Messages.CountByTenant(ctx, tenant.ID); err == nil {
				row.MessageCount = count
			}
			if last, err := h.Messages.LastByTenant(ctx, tenant.ID); err == nil && last != nil {
				row.LastActivity = humanize.Time(*last)
			}
		}

		rows = append(rows, row)
	}

	title := "BrokerDesk WA"
	settings := &settingsApp.DynamicSettings{}
	if h.Settings != nil {
		if ds, err := h.Settings.GetDynamicSettings(ctx); err == nil {
			settings = ds
			if ds.DashboardTitle != "" {
				title = ds.DashboardTitle
			}
		} else {
			logrus.Warnf("[DASHBOARD] failed to load settings: %v", err)
		}
	}

	return views.Render(c, "dashboard", fiber.Map{
		"Title":    title,
		"Tenants":  rows,
		"Plans":    tenancyDomain.Plans,
		"Settings": settings,
		"Token":    c.Query("token"),
	})
}
