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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetChatRateLimit() float64
	GetChatRateBurst() int
}

// JWTConfig provides JWT validation settings for admin middleware.
type JWTConfig interface {
	GetJWTSecret() string
	GetJWTTokenTTL() time.Duration
}

// RedisConfig provides Redis connection settings for background jobs.
type RedisConfig interface {
	GetRedisURL() string
}

// AIConfig provides settings for the AI completion provider.
type AIConfig interface {
	GetGroqAPIKey() string
	GetGroqBaseURL() string
	GetGroqModel() string
	GetGroqTimeout() time.Duration
	GetGroqHistoryWindow() int
	IsGroqEnabled() bool
}

// CalendarConfig provides settings for the Cal.com booking provider.
type CalendarConfig interface {
	GetCalComAPIKey() string
	GetCalComBaseURL() string
	GetCalComUsername() string
	GetCalComEventTypeID() int
	IsCalComEnabled() bool
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetLeadAlertEmail() string
}

// ScoringConfig provides the lead tier thresholds.
type ScoringConfig interface {
	GetHighValueThreshold() int
	GetQualifiedThreshold() int
	GetWarmThreshold() int
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
	JWTSecret          string
	JWTTokenTTL        time.Duration
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	ChatRateLimit      float64
	ChatRateBurst      int
	GroqAPIKey         string
	GroqBaseURL        string
	GroqModel          string
	GroqTimeout        time.Duration
	GroqHistoryWindow  int
	CalComAPIKey       string
	CalComBaseURL      string
	CalComUsername     string
	CalComEventTypeID  int
	EmailEnabled       bool
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EmailFromName      string
	EmailFromAddress   string
	LeadAlertEmail     string
	HighValueThreshold int
	QualifiedThreshold int
	WarmThreshold      int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }
func (c *Config) GetChatRateLimit() float64 { return c.ChatRateLimit }
func (c *Config) GetChatRateBurst() int     { return c.ChatRateBurst }

// JWTConfig implementation
func (c *Config) GetJWTSecret() string           { return c.JWTSecret }
func (c *Config) GetJWTTokenTTL() time.Duration  { return c.JWTTokenTTL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string { return c.RedisURL }

// AIConfig implementation
func (c *Config) GetGroqAPIKey() string           { return c.GroqAPIKey }
func (c *Config) GetGroqBaseURL() string          { return c.GroqBaseURL }
func (c *Config) GetGroqModel() string            { return c.GroqModel }
func (c *Config) GetGroqTimeout() time.Duration   { return c.GroqTimeout }
func (c *Config) GetGroqHistoryWindow() int       { return c.GroqHistoryWindow }
func (c *Config) IsGroqEnabled() bool             { return c.GroqAPIKey != "" }

// CalendarConfig implementation
func (c *Config) GetCalComAPIKey() string    { return c.CalComAPIKey }
func (c *Config) GetCalComBaseURL() string   { return c.CalComBaseURL }
func (c *Config) GetCalComUsername() string  { return c.CalComUsername }
func (c *Config) GetCalComEventTypeID() int  { return c.CalComEventTypeID }
func (c *Config) IsCalComEnabled() bool      { return c.CalComAPIKey != "" }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetLeadAlertEmail() string   { return c.LeadAlertEmail }

// ScoringConfig implementation
func (c *Config) GetHighValueThreshold() int { return c.HighValueThreshold }
func (c *Config) GetQualifiedThreshold() int { return c.QualifiedThreshold }
func (c *Config) GetWarmThreshold() int      { return c.WarmThreshold }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTokenTTL:        mustDuration(getEnv("JWT_TOKEN_TTL", "12h")),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		ChatRateLimit:      mustFloat(getEnv("CHAT_RATE_LIMIT", "5")),
		ChatRateBurst:      mustInt(getEnv("CHAT_RATE_BURST", "10")),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:        getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqTimeout:        mustDuration(getEnv("GROQ_TIMEOUT", "30s")),
		GroqHistoryWindow:  mustInt(getEnv("GROQ_HISTORY_WINDOW", "10")),
		CalComAPIKey:       getEnv("CALCOM_API_KEY", ""),
		CalComBaseURL:      getEnv("CALCOM_BASE_URL", "https://api.cal.com/v1"),
		CalComUsername:     getEnv("CALCOM_USERNAME", "provision-brokerage"),
		CalComEventTypeID:  mustInt(getEnv("CALCOM_EVENT_TYPE_ID", "0")),
		EmailEnabled:       emailEnabled && smtpHost != "",
		SMTPHost:           smtpHost,
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "ProVision Brokerage"),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		LeadAlertEmail:     getEnv("LEAD_ALERT_EMAIL", ""),
		HighValueThreshold: mustInt(getEnv("HIGH_VALUE_THRESHOLD", "80")),
		QualifiedThreshold: mustInt(getEnv("QUALIFIED_THRESHOLD", "60")),
		WarmThreshold:      mustInt(getEnv("WARM_THRESHOLD", "40")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if !(cfg.HighValueThreshold > cfg.QualifiedThreshold && cfg.QualifiedThreshold > cfg.WarmThreshold && cfg.WarmThreshold > 0) {
		return nil, fmt.Errorf("lead tier thresholds must be strictly descending and positive")
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

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
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

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
