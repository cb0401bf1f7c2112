package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Queue.MaxRetries)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
backend:
  url: https://academy.example.com
  token: anon-key
  request_timeout: 5s
storage:
  driver: sqlite
  path: /tmp/queue.db
queue:
  max_retries: 0
agent:
  sync_interval: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TMASYNC_BACKEND_TOKEN", "env-key")
	t.Setenv("TMASYNC_LOG_LEVEL", "debug")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend-url", "", "")
	require.NoError(t, flags.Parse([]string{"--backend-url", "https://override.example.com"}))

	cfg, err := Load(path, map[string]*pflag.Flag{
		"backend.url":  flags.Lookup("backend-url"),
		"storage.path": nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.Backend.URL)
	assert.Equal(t, "env-key", cfg.Backend.Token)
	assert.Equal(t, 5*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/queue.db", cfg.Storage.Path)
	assert.Equal(t, 0, cfg.Queue.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Agent.SyncInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Незаданные ключи берутся из значений по умолчанию
	assert.Equal(t, Default().Agent.Listen, cfg.Agent.Listen)
}

func TestLoad_UnsetFlagDoesNotOverride(t *testing.T) {
	t.Setenv("TMASYNC_AGENT_URL", "http://127.0.0.1:9999")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("agent-url", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", map[string]*pflag.Flag{"agent.url": flags.Lookup("agent-url")})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Agent.URL)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o600))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")

	require.NoError(t, os.WriteFile(path, []byte("backend: [not, a, map"), 0o600))
	_, err = Load(path, nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Bad backend URL", mutate: func(c *Config) { c.Backend.URL = "ftp://x" }, wantErr: "backend.url"},
		{name: "Backend without host", mutate: func(c *Config) { c.Backend.URL = "http://" }, wantErr: "backend.url has no host"},
		{name: "Zero timeout", mutate: func(c *Config) { c.Backend.RequestTimeout = 0 }, wantErr: "request_timeout"},
		{name: "Negative retries", mutate: func(c *Config) { c.Queue.MaxRetries = -1 }, wantErr: "max_retries"},
		{name: "File notifier without file", mutate: func(c *Config) { c.Badge.File = "" }, wantErr: "badge.file"},
		{name: "Unknown notifier", mutate: func(c *Config) { c.Badge.Notifier = "dock" }, wantErr: "badge.notifier"},
		{name: "Redis without URL", mutate: func(c *Config) { c.Badge.Store = BadgeStoreRedis }, wantErr: "badge.redis_url"},
		{name: "Zero rate limit", mutate: func(c *Config) { c.Agent.RateLimit = 0 }, wantErr: "agent.rate_limit"},
		{name: "Unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "Unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "request_timeout: 30s")
	assert.NotContains(t, string(data), "passphrase")

	// Повторная запись без force запрещена
	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	// Записанный файл читается обратно в те же значения
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := LogConfig{Level: "warn", Format: LogFormatJSON}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "item_id", "abc")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"item_id":"abc"`)

	level, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
