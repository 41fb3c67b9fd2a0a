package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"latchbot/core/log"
)

type AppConfig struct {
	// Latch API
	BotToken   string        `env:"LATCH_BOT_TOKEN,required,notEmpty"`
	BaseURL    string        `env:"LATCH_BASE_URL"                     envDefault:"http://localhost"`
	Timeout    time.Duration `env:"LATCH_TIMEOUT"                      envDefault:"30s"`
	MaxRetries int           `env:"LATCH_MAX_RETRIES"                  envDefault:"3"`

	// Webhook server
	Port               string `env:"PORT"                 envDefault:"3000"`
	WebhookPath        string `env:"WEBHOOK_PATH"         envDefault:"/latch/webhook"`
	WebhookKey         string `env:"WEBHOOK_KEY"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	LogLevel    string `env:"LOG_LEVEL"   envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	AppName     string `env:"APP_NAME"    envDefault:"latchbot"`

	// AlertConversationID receives error alerts; 0 disables them
	AlertConversationID int64 `env:"ALERT_CONVERSATION_ID" envDefault:"0"`
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️ Could not load .env file, continuing with system env vars")
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (*AppConfig, error) {
	config := &AppConfig{}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	if config.AlertConversationID != 0 {
		log.Info("✅ Error alerts configured", "conversation_id", config.AlertConversationID)
	} else {
		log.Info("⚠️ ALERT_CONVERSATION_ID not set - error alerts will be disabled")
	}

	return config, nil
}

func (c *AppConfig) validate() error {
	if !strings.HasPrefix(c.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with '/', got %q", c.WebhookPath)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LATCH_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("LATCH_MAX_RETRIES cannot be negative, got %d", c.MaxRetries)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas
func (c *AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// SlogLevel returns the configured log level, defaulting to info
func (c *AppConfig) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}
