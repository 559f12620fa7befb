package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envConfigKey, "ENV", "HTTP_ADDR", "DB_PATH", "STORE", "HISTORY_BACKEND", "OVERLAP_POLICY",
		"SESSION_SECRET", "TELEGRAM_TOKEN", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL", "HISTORY_LIMIT", "SNAPSHOT_LIMIT", "SESSION_TTL", "LLM_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.NoError(t, cfg.Validate(false))
	assert.Error(t, cfg.Validate(true))
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "calendarbot.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "production"
store = "memory"
snapshot_limit = 10
overlap_policy = "store"

[llm]
model = "file-model"
timeout = "5s"
`), 0o600))

	t.Setenv(envConfigKey, path)
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HISTORY_LIMIT", "8")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 10, cfg.SnapshotLimit)
	assert.Equal(t, "store", cfg.OverlapPolicy)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout.Duration)
	assert.Equal(t, 8, cfg.HistoryLimit)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL.Duration)
	assert.NoError(t, cfg.Validate(true))
}

func TestLoad_BadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HISTORY_LIMIT", "lots")
	_, err := Load()
	assert.ErrorContains(t, err, "HISTORY_LIMIT must be an integer")

	clearEnv(t)
	t.Setenv("LLM_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "LLM_TIMEOUT must be a duration")

	clearEnv(t)
	t.Setenv(envConfigKey, filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	assert.ErrorContains(t, err, "decode config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "store", mutate: func(c *Config) { c.Store = "redis" }, want: `store must be "sqlite" or "memory"`},
		{name: "history", mutate: func(c *Config) { c.HistoryBackend = "file" }, want: "history backend must be"},
		{name: "sql history needs sql store", mutate: func(c *Config) { c.Store = StoreMemory; c.HistoryBackend = HistorySQL }, want: "requires the sqlite store"},
		{name: "policy", mutate: func(c *Config) { c.OverlapPolicy = "never" }, want: "overlap policy must be"},
		{name: "snapshot", mutate: func(c *Config) { c.SnapshotLimit = 0 }, want: "snapshot limit must be positive"},
		{name: "history limit", mutate: func(c *Config) { c.HistoryLimit = -1 }, want: "history limit must be positive"},
		{name: "ttl", mutate: func(c *Config) { c.SessionTTL = Duration{} }, want: "session ttl must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(false), tt.want)
		})
	}
}

func TestGommonLevel(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, log.INFO, cfg.GommonLevel())
	cfg.LogLevel = "debug"
	assert.Equal(t, log.DEBUG, cfg.GommonLevel())
	cfg.LogLevel = "off"
	assert.Equal(t, log.OFF, cfg.GommonLevel())
}
