// Package config loads the apps configuration from TOML with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/envfile"
	"github.com/conn-castle/apps/internal/messages"
)

// Environment variables that override config values.
const (
	EnvPrefix   = "APPS_"
	EnvStoreURL = "APPS_STORE_URL"
	EnvLogLevel = "APPS_LOG_LEVEL"
)

// DefaultStoreURL is the app store API used when nothing else is configured.
const DefaultStoreURL = "https://worldofkano.com/api"

// ErrConfigValidation wraps config validation failures (as opposed to TOML
// syntax or filesystem errors).
var ErrConfigValidation = errors.New("config validation failed")

// Config is the full apps configuration.
type Config struct {
	Store StoreConfig `toml:"store"`
	Paths PathsConfig `toml:"paths"`
	Log   LogConfig   `toml:"log"`
}

// StoreConfig describes how to reach the app store.
type StoreConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
	Retries int    `toml:"retries"`
}

// PathsConfig lists where downloads and installed artifacts live.
type PathsConfig struct {
	TempDir         string `toml:"temp_dir"`
	AppsDir         string `toml:"apps_dir"`
	IconsDir        string `toml:"icons_dir"`
	ApplicationsDir string `toml:"applications_dir"`
	DesktopDir      string `toml:"desktop_dir"`
	LockFile        string `toml:"lock_file"`
}

// LogConfig configures diagnostic logging. An empty File logs to stderr.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			BaseURL: DefaultStoreURL,
			Timeout: "30s",
			Retries: 2,
		},
		Paths: PathsConfig{
			TempDir:         filepath.Join(os.TempDir(), "apps-downloads"),
			AppsDir:         "~/.local/share/apps",
			IconsDir:        "~/.local/share/icons/hicolor/66x66/apps",
			ApplicationsDir: "~/.local/share/applications",
			DesktopDir:      "~/Desktop",
			LockFile:        filepath.Join(os.TempDir(), "apps-install.lock"),
		},
		Log: LogConfig{Level: "warning"},
	}
}

// DefaultPath returns ~/.config/apps/config.toml.
func DefaultPath() (string, error) {
	return homedir.Expand("~/.config/apps/config.toml")
}

// Load reads path when it exists, applies defaults, environment overrides from an
// adjacent .env file and the process environment, expands ~ in paths, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, path, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		log.Debugf("config %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf(messages.ConfigReadFmt, path, err)
	}

	envPath := filepath.Join(filepath.Dir(path), ".env")
	env, err := envfile.Load(envPath, EnvPrefix)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigEnvFileFmt, envPath, err)
	}
	applyEnv(&cfg, env, os.LookupEnv)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return &cfg, nil
}

func decode(data []byte, source string, cfg *Config) error {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeyFmt, ErrConfigValidation, source, err)
		}
		return fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	return nil
}

// applyEnv overlays dotenv values first, then the process environment.
func applyEnv(cfg *Config, dotenv map[string]string, lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		v, ok := dotenv[key]
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	if v, ok := get(EnvStoreURL); ok {
		cfg.Store.BaseURL = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Paths.TempDir,
		&c.Paths.AppsDir,
		&c.Paths.IconsDir,
		&c.Paths.ApplicationsDir,
		&c.Paths.DesktopDir,
		&c.Paths.LockFile,
		&c.Log.File,
	} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf(messages.ConfigExpandPathFmt, *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the config for missing or malformed values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.BaseURL) == "" {
		return errors.New(messages.ConfigStoreURLRequired)
	}
	u, err := url.Parse(c.Store.BaseURL)
	if err == nil && ((u.Scheme != "http" && u.Scheme != "https") || u.Host == "") {
		err = fmt.Errorf("scheme must be http or https with a host")
	}
	if err != nil {
		return fmt.Errorf(messages.ConfigStoreURLInvalidFmt, c.Store.BaseURL, err)
	}
	if _, err := c.StoreTimeout(); err != nil {
		return err
	}
	if c.Store.Retries < 0 {
		return errors.New(messages.ConfigRetriesNegative)
	}
	required := []struct {
		name  string
		value string
	}{
		{"temp_dir", c.Paths.TempDir},
		{"apps_dir", c.Paths.AppsDir},
		{"icons_dir", c.Paths.IconsDir},
		{"applications_dir", c.Paths.ApplicationsDir},
		{"desktop_dir", c.Paths.DesktopDir},
		{"lock_file", c.Paths.LockFile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf(messages.ConfigPathRequiredFmt, r.name)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// StoreTimeout parses the store timeout. An empty value means no timeout.
func (c *Config) StoreTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Store.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Store.Timeout)
	if err == nil && d < 0 {
		err = errors.New("must not be negative")
	}
	if err != nil {
		return 0, fmt.Errorf(messages.ConfigTimeoutInvalidFmt, c.Store.Timeout, err)
	}
	return d, nil
}

// LogLevel parses the configured logrus level.
func (c *Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, fmt.Errorf(messages.ConfigLogLevelInvalidFmt, c.Log.Level, err)
	}
	return lvl, nil
}
