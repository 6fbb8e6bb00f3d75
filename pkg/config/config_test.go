package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "MODEL_PATH", "CORS_ALLOWED_ORIGINS",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW_SECONDS",
		"REDIS_ENABLED", "AUDIT_ENABLED", "OTEL_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "rf_model.json", cfg.Model.Path)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 0, cfg.RateLimit.Requests)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Audit.Enabled)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODEL_PATH", "/models/srq20.json")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_REQUESTS", "30")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/models/srq20.json", cfg.Model.Path)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, 10, cfg.RateLimit.WindowSeconds)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Redis.RedisAddr())
}

func TestLoad_InvalidRateLimitWindow(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "srq20", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=srq20 sslmode=disable", cfg.DatabaseDSN())
}

func TestDatabaseDSN_QuotesEmptyAndSpecialValues(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "", Database: "srq20", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=postgres password='' dbname=srq20 sslmode=disable", cfg.DatabaseDSN())

	cfg.Password = `it's a secret`
	assert.Contains(t, cfg.DatabaseDSN(), `password='it\'s a secret'`)
}
