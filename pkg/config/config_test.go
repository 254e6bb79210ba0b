package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "campus_ledger", cfg.Database.Name)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "ledger.events", cfg.Events.Exchange)
	assert.Equal(t, 2, cfg.Notify.Workers)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("JWT_EXPIRATION", "90m")

	cfg := fromViper(v)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
}
