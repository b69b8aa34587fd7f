package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string `validate:"required"`
	Environment string `validate:"required"`

	BirthdaySource  string `validate:"oneof=file env postgres"`
	BirthdayFile    string `validate:"required_if=BirthdaySource file"`
	BirthdaysInline string `validate:"required_if=BirthdaySource env"`

	LookaheadDays int    `validate:"gte=0"`
	Timezone      string `validate:"required"`
	ReferenceDate string `validate:"omitempty,datetime=2006-01-02"` // Fixed "today", mostly for replays
	LeapDayPolicy string `validate:"oneof=feb28 mar1"`

	StateBackend string `validate:"oneof=sqlite postgres memory"`
	StatePath    string `validate:"required_if=StateBackend sqlite"`
	DatabaseURL  string
	PruneOnRun   bool

	Notifier             string        `validate:"oneof=log webhook telegram"`
	WebhookURL           string        `validate:"omitempty,url"`
	WebhookTimeout       time.Duration `validate:"gt=0"`
	WebhookRatePerSecond float64       `validate:"gt=0"`
	TelegramToken        string        `validate:"required_if=Notifier telegram"`
	TelegramChatID       int64         `validate:"required_if=Notifier telegram"`

	CronSpec string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.BirthdaySource = strings.ToLower(getEnv("BIRTHDAY_SOURCE", "file"))
	cfg.BirthdayFile, err = expandHome(getEnv("BIRTHDAY_FILE", "~/.birthday"))
	if err != nil {
		return nil, fmt.Errorf("invalid BIRTHDAY_FILE: %w", err)
	}
	cfg.BirthdaysInline = os.Getenv("BIRTHDAYS")

	cfg.LookaheadDays, err = strconv.Atoi(getEnv("LOOKAHEAD_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOOKAHEAD_DAYS: %w", err)
	}
	cfg.Timezone = getEnv("TIMEZONE", "Local")
	cfg.ReferenceDate = os.Getenv("REFERENCE_DATE")
	cfg.LeapDayPolicy = strings.ToLower(getEnv("LEAP_DAY_POLICY", "feb28"))

	cfg.StateBackend = strings.ToLower(getEnv("STATE_BACKEND", "sqlite"))
	cfg.StatePath = getEnv("STATE_PATH", "bdremind.db")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.PruneOnRun, err = strconv.ParseBool(getEnv("PRUNE_ON_RUN", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRUNE_ON_RUN: %w", err)
	}

	cfg.Notifier = strings.ToLower(getEnv("NOTIFIER", "log"))
	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
	cfg.WebhookTimeout, err = time.ParseDuration(getEnv("WEBHOOK_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}
	cfg.WebhookRatePerSecond, err = strconv.ParseFloat(getEnv("WEBHOOK_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_RATE_PER_SECOND: %w", err)
	}
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.CronSpec = getEnv("CRON_SPEC", "0 9 * * *") // Default: 9 AM daily

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field rules and the cross-field requirements the tags cannot express.
// Call it again after applying command line overrides.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Notifier == "webhook" && c.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is not set")
	}
	if (c.BirthdaySource == "postgres" || c.StateBackend == "postgres") && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "Local" means the host zone.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
