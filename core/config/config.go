package config

import (
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Whatsapp WhatsappConfig
	Admin    AdminConfig
	Tenancy  TenancyConfig
	AI       AIConfig
	Inbox    InboxConfig
	Security SecurityConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	BaseUrl            string
	TrustedProxies     []string
	CorsAllowedOrigins []string
}

type PathsConfig struct {
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// WhatsappConfig covers the Cloud API credentials and send limits.
type WhatsappConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	GraphBaseURL  string
	GraphVersion  string
	MaxTextLength int
	SendTimeout   int // seconds
}

type AdminConfig struct {
	Token string
}

type TenancyConfig struct {
	DefaultTenantID uint
}

type AIConfig struct {
	Provider       string // "openai" or "gemini"
	OpenAIKey      string
	GeminiKey      string
	Model          string
	SystemPrompt   string
	RequestTimeout int // seconds
	MaxTurns       int // history turns kept per contact
	MaxContacts    int // contacts tracked before LRU eviction
}

type InboxConfig struct {
	SessionSecret string
	SeedAgentUser string
	SeedAgentPass string
	SeedAgentName string
}

type SecurityConfig struct {
	SecretKey string
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from a .env file (when present) and
// environment variables, falling back to defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	storages := getEnv("APP_STORAGES_DIR", "storages")

	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "development"),
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: []string{"http://localhost:3000"},
	}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		appCfg.CorsAllowedOrigins = strings.Split(v, ",")
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(storages, "brokerdesk.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "bdwap:"),
	}

	waCfg := WhatsappConfig{
		AccessToken:   getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		VerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		GraphBaseURL:  getEnv("WHATSAPP_GRAPH_BASE_URL", "https://graph.facebook.com"),
		GraphVersion:  getEnv("WHATSAPP_GRAPH_VERSION", "v20.0"),
		MaxTextLength: getEnvInt("WHATSAPP_MAX_TEXT_LENGTH", 4096),
		SendTimeout:   getEnvInt("WHATSAPP_SEND_TIMEOUT", 20),
	}

	aiCfg := AIConfig{
		Provider:       getEnv("AI_PROVIDER", "openai"),
		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiKey:      getEnv("GEMINI_API_KEY", ""),
		Model:          getEnv("AI_MODEL", ""),
		SystemPrompt:   getEnv("AI_SYSTEM_PROMPT", ""),
		RequestTimeout: getEnvInt("AI_REQUEST_TIMEOUT", 25),
		MaxTurns:       getEnvInt("AI_HISTORY_MAX_TURNS", 20),
		MaxContacts:    getEnvInt("AI_HISTORY_MAX_CONTACTS", 500),
	}

	securityCfg := SecurityConfig{
		SecretKey: getEnv("APP_SECRET_KEY", "changeme_please_change_me_in_prod_12345"),
	}

	inboxCfg := InboxConfig{
		// The inbox session falls back to the app secret unless given
		// its own signing key.
		SessionSecret: getEnv("INBOX_SESSION_SECRET", securityCfg.SecretKey),
		SeedAgentUser: getEnv("INBOX_SEED_AGENT_USER", ""),
		SeedAgentPass: getEnv("INBOX_SEED_AGENT_PASS", ""),
		SeedAgentName: getEnv("INBOX_SEED_AGENT_NAME", "Agent"),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    PathsConfig{Storages: storages},
		Database: dbCfg,
		Whatsapp: waCfg,
		Admin:    AdminConfig{Token: getEnv("ADMIN_TOKEN", "change_me")},
		Tenancy:  TenancyConfig{DefaultTenantID: uint(getEnvInt("DEFAULT_TENANT_ID", 1))},
		AI:       aiCfg,
		Inbox:    inboxCfg,
		Security: securityCfg,
	}

	Global = cfg
	return cfg, nil
}
