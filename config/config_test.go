package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(New(), "", noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 60*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.Gateway.Probe)
	assert.Equal(t, BackendFile, cfg.Prefs.Backend)
	assert.NotEmpty(t, cfg.Prefs.Path)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omnibot.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9090"

[gateway]
base_url = "http://localhost:4000/v1"
timeout = "5s"
probe = false

[prefs]
backend = "sqlite"
path = "/tmp/omnibot.db"

[session]
ttl = "2m"

[models]
claude = "anthropic/claude-3-haiku"
`), 0o644))

	cfg, err := Load(New(), path, noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:4000/v1", cfg.Gateway.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.False(t, cfg.Gateway.Probe)
	assert.Equal(t, BackendSQLite, cfg.Prefs.Backend)
	assert.Equal(t, "/tmp/omnibot.db", cfg.Prefs.Path)
	assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "anthropic/claude-3-haiku", cfg.Models["claude"])
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omnibot.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = \"9090\"\n"), 0o644))

	t.Setenv("OMNIBOT_PORT", "7070")
	t.Setenv("OMNIBOT_GATEWAY_API_KEY", "sk-test")

	cfg, err := Load(New(), path, noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "sk-test", cfg.Gateway.APIKey)
}

func TestPlainPortFallback(t *testing.T) {
	t.Setenv("OMNIBOT_PORT", "")
	t.Setenv("PORT", "3000")

	cfg, err := Load(New(), "", noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
}

func TestDotEnvLoaded(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("OMNIBOT_SESSION_TTL=45s\n"), 0o644))
	os.Unsetenv("OMNIBOT_SESSION_TTL")
	t.Cleanup(func() { os.Unsetenv("OMNIBOT_SESSION_TTL") })

	cfg, err := Load(New(), "", env)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.SessionTTL)
}

func TestInvalidBackend(t *testing.T) {
	t.Setenv("OMNIBOT_PREFS_BACKEND", "redis")

	_, err := Load(New(), "", noDotEnv(t))
	require.ErrorIs(t, err, ErrInvalidBackend)
}

func TestSQLiteDefaultPath(t *testing.T) {
	t.Setenv("OMNIBOT_PREFS_BACKEND", "sqlite")

	cfg, err := Load(New(), "", noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, ".db", filepath.Ext(cfg.Prefs.Path))
}
