package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port        string
	DatabaseURL string
	CorsOrigins []string

	JWTSecret             string
	JWTIssuer             string
	AccessTTLSeconds      int64
	SessionTTLSeconds     int64
	SessionRefreshSeconds int64
	CookieSecure          bool
	LoginRatePerMinute    int
	BootstrapAdminEmail   string

	RedisURL             string
	CountCacheTTLSeconds int

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	LLMTimeoutSeconds int

	ResendAPIKey string
	AdminEmail   string
	EmailFrom    string
	AppBaseURL   string

	MetricsDiskPath      string
	MetricsSampleSeconds int

	LogDir           string
	LogRetentionDays int
	LogLevel         string
}

func Load() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: mustEnv("DATABASE_URL"),
		CorsOrigins: parseCSV(envOr("CORS_ORIGINS", "")),

		JWTSecret:             mustEnv("JWT_SECRET"),
		JWTIssuer:             envOr("JWT_ISSUER", "jeopardy-trainer"),
		AccessTTLSeconds:      int64(envOrInt("ACCESS_TTL_SECONDS", 86400)),
		SessionTTLSeconds:     int64(envOrInt("SESSION_TTL_SECONDS", 2592000)),
		SessionRefreshSeconds: int64(envOrInt("SESSION_REFRESH_SECONDS", 86400)),
		CookieSecure:          envOrBool("COOKIE_SECURE", false),
		LoginRatePerMinute:    envOrInt("LOGIN_RATE_PER_MINUTE", 20),
		BootstrapAdminEmail:   strings.ToLower(envOr("BOOTSTRAP_ADMIN_EMAIL", "")),

		RedisURL:             envOr("REDIS_URL", ""),
		CountCacheTTLSeconds: envOrInt("COUNT_CACHE_TTL_SECONDS", 300),

		OpenAIAPIKey:      envOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     envOr("OPENAI_BASE_URL", ""),
		OpenAIModel:       envOr("OPENAI_MODEL", "gpt-4o"),
		LLMTimeoutSeconds: envOrInt("LLM_TIMEOUT_SECONDS", 120),

		ResendAPIKey: envOr("RESEND_API_KEY", ""),
		AdminEmail:   envOr("ADMIN_EMAIL", ""),
		EmailFrom:    envOr("EMAIL_FROM", "Jeopardy Training <noreply@example.com>"),
		AppBaseURL:   strings.TrimRight(envOr("APP_BASE_URL", "http://localhost:3000"), "/"),

		MetricsDiskPath:      envOr("METRICS_DISK_PATH", "/"),
		MetricsSampleSeconds: envOrInt("METRICS_SAMPLE_INTERVAL", 15),

		LogDir:           envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays: clamp(envOrInt("LOG_RETENTION_DAYS", 7), 1, 7),
		LogLevel:         strings.ToLower(envOr("LOG_LEVEL", "info")),
	}
}

// StudyEnabled reports whether an LLM key is configured.
func (c Config) StudyEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// EmailEnabled reports whether outbound email can be sent.
func (c Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
