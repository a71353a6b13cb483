package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	timeout, err := cfg.StoreTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func loadString(t *testing.T, content string) (*Config, string, error) {
	t.Helper()
	t.Setenv(EnvStoreURL, "")
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := Load(path)
	return cfg, path, err
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, _, err := loadString(t, `
[store]
base_url = "https://store.example.com/api"
timeout = "5s"
retries = 0

[paths]
apps_dir = "/opt/apps"

[log]
level = "debug"
`)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com/api", cfg.Store.BaseURL)
	assert.Equal(t, 0, cfg.Store.Retries)
	assert.Equal(t, "/opt/apps", cfg.Paths.AppsDir)
	assert.NotContains(t, cfg.Paths.IconsDir, "~")
	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, lvl)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, _, err := loadString(t, "[store]\nbase_url = \"https://x.example\"\nmirror = \"y\"\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigValidation))
	assert.Contains(t, err.Error(), "unrecognized keys")
}

func TestLoadSyntaxError(t *testing.T) {
	_, path, err := loadString(t, "[store")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigValidation))
	assert.Contains(t, err.Error(), "invalid config "+path)
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty url", func(c *Config) { c.Store.BaseURL = " " }, "base_url is required"},
		{"bad scheme", func(c *Config) { c.Store.BaseURL = "ftp://store" }, "is invalid"},
		{"bad timeout", func(c *Config) { c.Store.Timeout = "soon" }, "store.timeout"},
		{"negative timeout", func(c *Config) { c.Store.Timeout = "-1s" }, "store.timeout"},
		{"negative retries", func(c *Config) { c.Store.Retries = -1 }, "retries"},
		{"missing apps dir", func(c *Config) { c.Paths.AppsDir = "" }, "paths.apps_dir"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvStoreURL, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultStoreURL, cfg.Store.BaseURL)
	assert.NotContains(t, cfg.Paths.AppsDir, "~")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("APPS_STORE_URL=https://dotenv.example\nAPPS_LOG_LEVEL=error\n"), 0o600))

	t.Setenv(EnvStoreURL, "")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example", cfg.Store.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level, "process environment wins over .env")
}

func TestLoadInvalidEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BROKEN\n"), 0o600))
	_, err := Load(filepath.Join(dir, "config.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestLoadValidationFailure(t *testing.T) {
	t.Setenv(EnvStoreURL, "")
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\nretries = -3\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigValidation))
}
