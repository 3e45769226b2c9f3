package cmd

import (
	"context"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	assistantApp "github.com/brokerdesk/bd-wap/assistant/application"
	assistantDomain "github.com/brokerdesk/bd-wap/assistant/domain"
	"github.com/brokerdesk/bd-wap/assistant/providers"
	assistantRepo "github.com/brokerdesk/bd-wap/assistant/repository"
	coreconfig "github.com/brokerdesk/bd-wap/core/config"
	coredb "github.com/brokerdesk/bd-wap/core/database"
	settingsApp "github.com/brokerdesk/bd-wap/core/settings/application"
	inboxApp "github.com/brokerdesk/bd-wap/inbox/application"
	inboxRepo "github.com/brokerdesk/bd-wap/inbox/repository"
	"github.com/brokerdesk/bd-wap/infrastructure/valkey"
	"github.com/brokerdesk/bd-wap/infrastructure/whatsapp"
	tenancyApp "github.com/brokerdesk/bd-wap/tenancy/application"
	tenancyDomain "github.com/brokerdesk/bd-wap/tenancy/domain"
	tenancyRepo "github.com/brokerdesk/bd-wap/tenancy/repository"
)

var (
	db *gorm.DB

	// Infrastructure
	valkeyClient   *valkey.Client
	whatsappClient *whatsapp.Client

	// Repositories
	messageLogRepo tenancyDomain.MessageLogRepository

	// Services
	tenancyService   *tenancyApp.TenancyService
	inboxService     *inboxApp.InboxService
	assistantService *assistantApp.AssistantService
	settingsService  *settingsApp.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "bd-wap",
	Short: "WhatsApp control room for brokerage tenants",
	Long: `bd-wap runs the BrokerDesk WhatsApp service: a Cloud API webhook bot
with per-tenant feature gating, plan enforcement, a compliance message log,
an operator dashboard and a human/AI handoff inbox.`,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig lets env vars reach the process through viper as well as
// the plain environment, matching container deployments that inject both.
func initEnvConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if _, err := coreconfig.LoadConfig(); err != nil {
		logrus.Fatalf("[INIT] failed to load configuration: %v", err)
	}

	if envPort := viper.GetString("app_port"); envPort != "" {
		coreconfig.Global.App.Port = envPort
	}
	if viper.IsSet("app_debug") {
		coreconfig.Global.App.Debug = viper.GetBool("app_debug")
	}
}

// initApp wires the whole object graph: database, repositories, services
// and the outbound WhatsApp client.
func initApp() {
	cfg := coreconfig.Global

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	var err error
	db, err = coredb.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[INIT] failed to connect database: %v", err)
	}

	ctx := context.Background()

	tenantRepo := tenancyRepo.NewTenantGormRepository(db)
	flagRepo := tenancyRepo.NewFlagGormRepository(db)
	msgRepo := tenancyRepo.NewMessageLogGormRepository(db)
	conversationRepo := inboxRepo.NewConversationGormRepository(db)
	agentRepo := inboxRepo.NewAgentGormRepository(db)

	for name, initFn := range map[string]func(context.Context) error{
		"tenants":       tenantRepo.InitSchema,
		"flags":         flagRepo.InitSchema,
		"message_logs":  msgRepo.InitSchema,
		"conversations": conversationRepo.InitSchema,
		"agents":        agentRepo.InitSchema,
	} {
		if err := initFn(ctx); err != nil {
			logrus.Fatalf("[INIT] failed to migrate %s: %v", name, err)
		}
	}

	messageLogRepo = msgRepo

	settingsService = settingsApp.NewSettingsService(db)
	if err := settingsService.InitSchema(ctx); err != nil {
		logrus.Fatalf("[INIT] failed to migrate settings: %v", err)
	}

	tenancyService = tenancyApp.NewTenancyService(tenantRepo, flagRepo)
	if _, err := tenancyService.EnsureTenant(ctx, cfg.Tenancy.DefaultTenantID); err != nil {
		logrus.Fatalf("[INIT] failed to provision default tenant: %v", err)
	}

	inboxService = inboxApp.NewInboxService(conversationRepo, agentRepo)
	if err := inboxService.SeedAgent(ctx, cfg.Inbox.SeedAgentUser, cfg.Inbox.SeedAgentPass, cfg.Inbox.SeedAgentName); err != nil {
		logrus.Errorf("[INIT] failed to seed agent account: %v", err)
	}

	whatsappClient = whatsapp.NewClient(whatsapp.Config{
		AccessToken:   cfg.Whatsapp.AccessToken,
		PhoneNumberID: cfg.Whatsapp.PhoneNumberID,
		GraphBaseURL:  cfg.Whatsapp.GraphBaseURL,
		GraphVersion:  cfg.Whatsapp.GraphVersion,
		MaxTextLength: cfg.Whatsapp.MaxTextLength,
		SendTimeout:   time.Duration(cfg.Whatsapp.SendTimeout) * time.Second,
	})

	initAssistant(cfg)
}

// initAssistant picks the provider and the history store. History lives in
// Valkey when enabled so replies survive restarts; otherwise a bounded
// in-memory store is used.
func initAssistant(cfg *coreconfig.Config) {
	var provider assistantDomain.AIProvider
	switch strings.ToLower(cfg.AI.Provider) {
	case "gemini":
		if cfg.AI.GeminiKey != "" {
			provider = providers.NewGeminiProvider(cfg.AI.GeminiKey)
		}
	default:
		if cfg.AI.OpenAIKey != "" {
			provider = providers.NewOpenAIProvider(cfg.AI.OpenAIKey)
		}
	}
	if provider == nil {
		logrus.Warn("[INIT] no AI provider configured, assistant replies disabled")
		return
	}

	var history assistantDomain.HistoryStore
	if cfg.Database.ValkeyEnabled {
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Warnf("[INIT] valkey unavailable, using in-memory history: %v", err)
		} else {
			valkeyClient = client
			history = assistantRepo.NewValkeyHistoryStore(client, cfg.AI.MaxTurns)
		}
	}
	if history == nil {
		history = assistantRepo.NewMemoryHistoryStore(cfg.AI.MaxTurns, cfg.AI.MaxContacts)
	}

	assistantService = assistantApp.NewAssistantService(provider, history, settingsService, assistantApp.Config{
		Model:        cfg.AI.Model,
		SystemPrompt: cfg.AI.SystemPrompt,
		ReplyTimeout: time.Duration(cfg.AI.RequestTimeout) * time.Second,
	})
	logrus.Infof("[INIT] assistant enabled with provider %s", assistantService.ProviderName())
}

// StopApp releases shared resources on shutdown.
func StopApp() {
	if valkeyClient != nil {
		valkeyClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}
