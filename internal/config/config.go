package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"residency-api/internal/core/domain"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	LogLevel    string
	Timezone    *time.Location
	Database    DatabaseConfig
	JWT         JWTConfig
	Cookie      CookieConfig
	Society     SocietyConfig
	Scheduler   SchedulerConfig
	Notify      NotifyConfig
	Seed        SeedConfig
	EnvFileUsed bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // mysql, postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// Approval policies for registration review
const (
	ApprovalAdmin          = "admin"
	ApprovalAdminCommittee = "admin_committee"
)

// SocietyConfig holds the billing and approval rules
type SocietyConfig struct {
	ApprovalPolicy string
	Penalty        domain.PenaltyPolicy
}

// ApproverRoles returns the roles allowed to review registrations
func (s SocietyConfig) ApproverRoles() []domain.Role {
	if s.ApprovalPolicy == ApprovalAdminCommittee {
		return []domain.Role{domain.RoleAdmin, domain.RoleCommittee}
	}
	return []domain.Role{domain.RoleAdmin}
}

// SchedulerConfig holds cron job settings
type SchedulerConfig struct {
	Enabled          bool
	ReminderSpec     string
	ReminderInterval time.Duration
	TokenCleanupSpec string
}

// NotifyConfig holds the outbound broadcast webhook
type NotifyConfig struct {
	WebhookURL string
	Token      string
	Timeout    time.Duration
}

// Enabled reports whether a webhook is configured
func (n NotifyConfig) Enabled() bool {
	return n.WebhookURL != ""
}

// SeedConfig holds the credentials of the bootstrap accounts
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production injects the environment directly
	envFileUsed := godotenv.Load() == nil

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	tz, err := time.LoadLocation(getEnv("TZ_NAME", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME: %w", err)
	}

	society, err := loadSocietyConfig()
	if err != nil {
		return nil, err
	}

	db, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    tz,
		Database:    db,
		JWT:         loadJWTConfig(appMode),
		Cookie:      loadCookieConfig(appMode),
		Society:     society,
		Scheduler:   loadSchedulerConfig(),
		Notify:      loadNotifyConfig(),
		Seed:        loadSeedConfig(),
		EnvFileUsed: envFileUsed,
	}

	if config.IsProd() && (config.JWT.Secret == defaultSecret || config.JWT.RefreshSecret == defaultRefreshSecret) {
		return nil, fmt.Errorf("PROD_JWT_SECRET and PROD_JWT_REFRESH_SECRET must be set in prod mode")
	}

	AppConfig = config
	return config, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case "mysql", "sqlite":
	case "postgres":
		defaultPort = "5432"
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", driver)
	}

	return DatabaseConfig{
		Driver:     driver,
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", defaultPort),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "residency"),
		SSLMode:    getEnv(prefix+"DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "residency.db"),
	}, nil
}

const (
	defaultSecret        = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadSocietyConfig() (SocietyConfig, error) {
	policy := strings.ToLower(getEnv("APPROVAL_POLICY", ApprovalAdmin))
	if policy != ApprovalAdmin && policy != ApprovalAdminCommittee {
		return SocietyConfig{}, fmt.Errorf("invalid APPROVAL_POLICY: '%s' (must be '%s' or '%s')", policy, ApprovalAdmin, ApprovalAdminCommittee)
	}

	lateFee, err := decimal.NewFromString(getEnv("LATE_FEE", "100"))
	if err != nil {
		return SocietyConfig{}, fmt.Errorf("invalid LATE_FEE: %w", err)
	}
	rate, err := decimal.NewFromString(getEnv("DAILY_PENALTY_PERCENT", "0.5"))
	if err != nil {
		return SocietyConfig{}, fmt.Errorf("invalid DAILY_PENALTY_PERCENT: %w", err)
	}

	penalty := domain.PenaltyPolicy{LateFee: lateFee, DailyRatePercent: rate}
	if err := penalty.Validate(); err != nil {
		return SocietyConfig{}, fmt.Errorf("invalid penalty policy: %w", err)
	}

	return SocietyConfig{ApprovalPolicy: policy, Penalty: penalty}, nil
}

func loadSchedulerConfig() SchedulerConfig {
	enabled, _ := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	return SchedulerConfig{
		Enabled:          enabled,
		ReminderSpec:     getEnv("REMINDER_CRON", "0 9 * * *"),
		ReminderInterval: time.Duration(getEnvInt("REMINDER_INTERVAL_DAYS", 7)) * 24 * time.Hour,
		TokenCleanupSpec: getEnv("TOKEN_CLEANUP_CRON", "30 3 * * *"),
	}
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		Token:      getEnv("NOTIFY_WEBHOOK_TOKEN", ""),
		Timeout:    time.Duration(getEnvInt("NOTIFY_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@residency.local"),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123456"),
		AdminName:     getEnv("SEED_ADMIN_NAME", "Society Admin"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://residency.example.org"
	}
	return origins
}
