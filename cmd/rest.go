package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreconfig "github.com/brokerdesk/bd-wap/core/config"
	"github.com/brokerdesk/bd-wap/ui/rest"
	"github.com/brokerdesk/bd-wap/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the webhook, admin API and inbox over http",
	Run:   restServer,
}

func init() {
	restCmd.Flags().StringP("port", "p", "", "override the listen port | example: --port=8080")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.App.Port = port
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "BrokerDesk WA",
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}
	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Token, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	// Public surface: Meta's webhook plus health.
	rest.InitRestWebhook(app, rest.Webhook{
		Config: rest.WebhookConfig{
			VerifyToken:     cfg.Whatsapp.VerifyToken,
			DefaultTenantID: cfg.Tenancy.DefaultTenantID,
		},
		Tenancy:   tenancyService,
		Inbox:     inboxService,
		Assistant: assistantService,
		Sender:    whatsappClient,
		Messages:  messageLogRepo,
	})

	apiGroup := app.Group("/api")
	healthHandler := rest.InitRestHealth(apiGroup, rest.Health{DB: db, Valkey: valkeyClient})
	app.Get("/", healthHandler.GetStatus)

	// Operator surface behind the admin token.
	adminGuard := middleware.AdminAuth(cfg.Admin.Token)
	rest.InitRestAdmin(apiGroup.Group("/admin", adminGuard), tenancyService, settingsService)
	rest.InitRestDebug(apiGroup.Group("/debug", adminGuard))

	rest.InitRestDashboard(app.Group("/dashboard", adminGuard), rest.Dashboard{
		Tenancy:  tenancyService,
		Messages: messageLogRepo,
		Settings: settingsService,
	})

	// Agent surface with its own session cookie auth.
	rest.InitRestInbox(app, rest.Inbox{
		Config: rest.InboxConfig{
			SessionSecret:   []byte(cfg.Inbox.SessionSecret),
			DefaultTenantID: cfg.Tenancy.DefaultTenantID,
		},
		Service:  inboxService,
		Tenancy:  tenancyService,
		Messages: messageLogRepo,
		Sender:   whatsappClient,
	})

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
