package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "revenue")
	t.Setenv("DB_NAME", "revenue")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Duration(0), cfg.Redis.TTL)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
	assert.Equal(t, 20, cfg.Pipeline.FailureSample)
	assert.Equal(t, DealsModeSupersede, cfg.Pipeline.DealsMode)
	assert.Equal(t, "UTC", cfg.Pipeline.Location.String())
	assert.Equal(t, time.Duration(0), cfg.Worker.PipelineInterval)
	assert.Equal(t, "revenue", cfg.Metrics.Prefix)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, []string{"localhost:3000", "127.0.0.1:3000"}, cfg.CORSAllowedHosts)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("PIPELINE_CONCURRENCY", "3")
	t.Setenv("PIPELINE_TIMEZONE", "Asia/Jakarta")
	t.Setenv("DEALS_MODE", "APPEND")
	t.Setenv("PIPELINE_INTERVAL", "6h")
	t.Setenv("PIPELINE_BUSINESS_ID", "b1")
	t.Setenv("CORS_ALLOWED_HOSTS", " Dash.Example.com , ,admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 3, cfg.Pipeline.Concurrency)
	assert.Equal(t, "Asia/Jakarta", cfg.Pipeline.Location.String())
	assert.Equal(t, DealsModeAppend, cfg.Pipeline.DealsMode)
	assert.Equal(t, 6*time.Hour, cfg.Worker.PipelineInterval)
	assert.Equal(t, "b1", cfg.Worker.BusinessID)
	assert.Equal(t, []string{"dash.example.com", "admin.example.com"}, cfg.CORSAllowedHosts)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad deals mode":   {"DEALS_MODE", "merge"},
		"zero concurrency": {"PIPELINE_CONCURRENCY", "0"},
		"bad timezone":     {"PIPELINE_TIMEZONE", "Mars/Olympus"},
		"bad interval":     {"PIPELINE_INTERVAL", "soon"},
		"negative ttl":     {"CACHE_TTL", "-1m"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_HOST", "")
		_, err := Load()
		assert.ErrorContains(t, err, "database configuration incomplete")
	})

	t.Run("jwt secret", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("auth disabled", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("JWT_SECRET", "")
		t.Setenv("AUTH_DISABLED", "true")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.AuthDisabled)
	})
}
