// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// QueueConfig provides settings for the asynq-backed job queue.
type QueueConfig interface {
	GetRedisURL() string
	GetQueueName() string
	GetQueueConcurrency() int
	GetQueueMaxAttempts() int
	GetQueueBackoffBase() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// WhatsAppConfig provides settings for the outbound WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppAPIKey() string
	GetWhatsAppInstance() string
}

// LLMConfig provides settings for the text-completion provider.
type LLMConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
}

// MLConfig provides settings for the external ML analysis service.
type MLConfig interface {
	GetMLServiceURL() string
	GetMLAPIKey() string
	IsMLAgentEnabled() bool
}

// AlertsConfig provides settings for the proactive alert scheduler.
type AlertsConfig interface {
	GetAlertsDailyCron() string
	GetAlertsWeeklyCron() string
}

// LeadsConfig provides settings for the lead stage state machine.
type LeadsConfig interface {
	IsLeadStageMonotonic() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	RedisURL           string
	QueueName          string
	QueueConcurrency   int
	QueueMaxAttempts   int
	QueueBackoffBase   time.Duration
	CORSAllowAll       bool
	CORSOrigins        []string
	WhatsAppURL        string
	WhatsAppAPIKey     string
	WhatsAppInstance   string
	GeminiAPIKey       string
	GeminiModel        string
	MLServiceURL       string
	MLAPIKey           string
	MLAgentEnabled     bool
	AlertsDailyCron    string
	AlertsWeeklyCron   string
	LeadStageMonotonic bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetQueueName() string               { return c.QueueName }
func (c *Config) GetQueueConcurrency() int           { return c.QueueConcurrency }
func (c *Config) GetQueueMaxAttempts() int           { return c.QueueMaxAttempts }
func (c *Config) GetQueueBackoffBase() time.Duration { return c.QueueBackoffBase }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppAPIKey() string   { return c.WhatsAppAPIKey }
func (c *Config) GetWhatsAppInstance() string { return c.WhatsAppInstance }

func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }

func (c *Config) GetMLServiceURL() string { return c.MLServiceURL }
func (c *Config) GetMLAPIKey() string     { return c.MLAPIKey }
func (c *Config) IsMLAgentEnabled() bool  { return c.MLAgentEnabled }

func (c *Config) GetAlertsDailyCron() string  { return c.AlertsDailyCron }
func (c *Config) GetAlertsWeeklyCron() string { return c.AlertsWeeklyCron }

func (c *Config) IsLeadStageMonotonic() bool { return c.LeadStageMonotonic }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		QueueName:          getEnv("QUEUE_NAME", "pipeline"),
		QueueConcurrency:   mustInt(getEnv("QUEUE_CONCURRENCY", "5")),
		QueueMaxAttempts:   mustInt(getEnv("QUEUE_MAX_ATTEMPTS", "3")),
		QueueBackoffBase:   mustDuration(getEnv("QUEUE_BACKOFF_BASE", "1s")),
		CORSAllowAll:       strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		WhatsAppURL:        getEnv("WHATSAPP_GATEWAY_URL", ""),
		WhatsAppAPIKey:     getEnv("WHATSAPP_GATEWAY_KEY", ""),
		WhatsAppInstance:   getEnv("WHATSAPP_DEFAULT_INSTANCE", "elite-finder"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MLServiceURL:       getEnv("ML_SERVICE_URL", ""),
		MLAPIKey:           getEnv("ML_API_KEY", ""),
		MLAgentEnabled:     strings.EqualFold(getEnv("ML_AGENT_ENABLED", "false"), "true"),
		AlertsDailyCron:    getEnv("ALERTS_DAILY_CRON", "0 9 * * *"),
		AlertsWeeklyCron:   getEnv("ALERTS_WEEKLY_CRON", "0 8 * * 1"),
		LeadStageMonotonic: strings.EqualFold(getEnv("LEAD_STAGE_MONOTONIC", "false"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.QueueConcurrency < 1 {
		cfg.QueueConcurrency = 5
	}
	if cfg.QueueMaxAttempts < 1 {
		cfg.QueueMaxAttempts = 3
	}
	if cfg.QueueBackoffBase <= 0 {
		cfg.QueueBackoffBase = time.Second
	}
	if cfg.MLAgentEnabled && cfg.MLServiceURL == "" {
		return nil, fmt.Errorf("ML_SERVICE_URL is required when ML_AGENT_ENABLED is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
