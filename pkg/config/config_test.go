package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, 0.4, cfg.Scoring.ManualGPAWeight)
	assert.Equal(t, 0.8, cfg.Scoring.PeerWeight)
	assert.Equal(t, 5*time.Minute, cfg.Competency.CacheTTL)
	assert.Equal(t, []string{"application/pdf", "image/png", "image/jpeg"}, cfg.Attachments.AllowedMIMEs)
	assert.EqualValues(t, 5*1024*1024, cfg.Attachments.MaxFileSizeBytes)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("API_PREFIX", "/v2")
	t.Setenv("SCORING_SELF_WEIGHT", "0.3")
	t.Setenv("COMPETENCY_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.Equal(t, 0.3, cfg.Scoring.SelfWeight)
	assert.Equal(t, 5*time.Minute, cfg.Competency.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("PORT=9191\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Port)
}
