package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PGSQL_URL", "postgres://localhost/bizledger")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, "5-M", cfg.LoginRateLimit)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)

	defaults := DefaultAlertRules()
	assert.Equal(t, defaults.Retention, cfg.AlertRules.Retention)
	assert.True(t, defaults.LowBalanceMin.Equal(cfg.AlertRules.LowBalanceMin))
	assert.Equal(t, 10, cfg.AlertRules.GoalDeadlineDays)
	assert.Equal(t, 15, cfg.AlertRules.CashFlowWarnDays)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY_DURATION", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ALERT_LOW_BALANCE_MIN", "750.50")
	t.Setenv("ALERT_SPIKE_COOLDOWN", "3h")
	t.Setenv("ALERT_SWEEP_CONCURRENCY", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration, "invalid duration falls back")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "750.5", cfg.AlertRules.LowBalanceMin.String())
	assert.Equal(t, 3*time.Hour, cfg.AlertRules.SpikeCooldown)
	assert.Equal(t, 1, cfg.AlertSweepConcurrency)
}
