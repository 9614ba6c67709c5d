package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini-search-preview", cfg.OpenAI.Model)
	assert.Equal(t, 1500, cfg.OpenAI.MaxTokens)
	assert.Equal(t, "Digital Marketer", cfg.Profile.BusinessType)
	assert.Equal(t, 5, cfg.Enrich.Concurrency)
	assert.Equal(t, 2, cfg.Enrich.MaxRetries)
	assert.Equal(t, 20, cfg.Enrich.NavTimeoutSecs)
	assert.Equal(t, 2, cfg.Search.DefaultCount)
	assert.InDelta(t, 2.0, cfg.Search.PageDelaySecs, 0.001)
	assert.Equal(t, 3, cfg.Search.MaxPages)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEADGEN_STORE_DRIVER", "postgres")
	t.Setenv("LEADGEN_STORE_DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("LEADGEN_ENRICH_CONCURRENCY", "12")
	t.Setenv("LEADGEN_PROFILE_BUSINESS_TYPE", "SEO Agency")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, 12, cfg.Enrich.Concurrency)
	assert.Equal(t, "SEO Agency", cfg.Profile.BusinessType)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}
