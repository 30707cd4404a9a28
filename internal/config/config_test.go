package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "TOKEN_LIMIT", "REVEAL_TICK", "LLM_BASE_URL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20000, cfg.Tutor.TokenLimit)
	assert.Equal(t, 30*time.Millisecond, cfg.Timing.RevealTick)
	assert.Equal(t, 600*time.Millisecond, cfg.Timing.PlanProgressTick)
	assert.Equal(t, 700*time.Millisecond, cfg.Timing.ReportProgressTick)
	assert.Equal(t, "https://api.anthropic.com", cfg.LLM.BaseURL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CorsOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "production")
	t.Setenv("TOKEN_LIMIT", "500")
	t.Setenv("REVEAL_TICK", "5ms")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 500, cfg.Tutor.TokenLimit)
	assert.Equal(t, 5*time.Millisecond, cfg.Timing.RevealTick)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_LIMIT", "lots")
	t.Setenv("SESSION_IDLE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 20000, cfg.Tutor.TokenLimit)
	assert.Equal(t, 2*time.Hour, cfg.Tutor.SessionIdleTTL)
}
