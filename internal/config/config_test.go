package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 300, cfg.Cache.PlanTTLSeconds)
	assert.Equal(t, "replenishment/plans", cfg.Storage.ReportPrefix)
	assert.Positive(t, cfg.Planner.Workers)
	assert.Equal(t, 3.0, cfg.Planner.CriticalMonths)
	assert.Equal(t, 6.0, cfg.Planner.WarningMonths)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("PLANNER_WORKERS", "3")
	t.Setenv("STORAGE_BUCKET", "reports")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 3, cfg.Planner.Workers)
	assert.Equal(t, "reports", cfg.Storage.Bucket)
}
