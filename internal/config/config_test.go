package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jeopardy")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("LOG_RETENTION_DAYS", "30")
	t.Setenv("APP_BASE_URL", "https://trainer.example.com/")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(2592000), cfg.SessionTTLSeconds)
	assert.Equal(t, 300, cfg.CountCacheTTLSeconds)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 7, cfg.LogRetentionDays)
	assert.Equal(t, "https://trainer.example.com", cfg.AppBaseURL)
	assert.False(t, cfg.StudyEnabled())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jeopardy")
	t.Setenv("JWT_SECRET", "")
	require.PanicsWithValue(t, "missing env var: JWT_SECRET", func() { Load() })
}

func TestParseCSV(t *testing.T) {
	assert.Nil(t, parseCSV("  "))
	assert.Equal(t, []string{"http://a", "http://b"}, parseCSV("http://a, ,http://b"))
}

func TestEnvOrBool(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "true")
	assert.True(t, envOrBool("COOKIE_SECURE", false))
	t.Setenv("COOKIE_SECURE", "nope")
	assert.True(t, envOrBool("COOKIE_SECURE", true))
}
