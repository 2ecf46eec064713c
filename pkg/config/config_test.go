package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000/, https://portal.example.com ,")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, []string{"http://localhost:3000/", "https://portal.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, int64(10*1024*1024), cfg.Storage.MaxFileSizeBytes)
	assert.Contains(t, cfg.Storage.AllowedMIMEs, "application/pdf")
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
}

func TestLoadTracingRatioClamped(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadRejectsDevSecretsInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "STORAGE_SIGNED_URL_SECRET")

	t.Setenv("JWT_SECRET", "prod-jwt")
	t.Setenv("STORAGE_SIGNED_URL_SECRET", "prod-storage")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment, Port: 0, APIPrefix: "api", Workers: WorkerConfig{Concurrency: 1}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT 0 out of range")
	assert.Contains(t, err.Error(), "API_PREFIX")
	assert.Contains(t, err.Error(), "STORAGE_SIGNED_URL_TTL")
}
