// Package config handles the XDG configuration directory, file paths and the
// layered settings: defaults, config.toml, .env, environment, then flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional TOML settings file.
	ConfigFile = "config.toml"

	// EnvFile is the optional dotenv file loaded into the environment.
	EnvFile = ".env"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "google_token.json"

	// DataDirName is the default data directory under Dir.
	DataDirName = "data"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Defaults.
const (
	DefaultBackend       = BackendFile
	DefaultSweepInterval = time.Hour
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the storage backend: file, memory or postgres.
	Backend string

	// DataDir is where the file backend keeps its documents.
	DataDir string

	// DatabaseURL is the PostgreSQL DSN for the postgres backend.
	DatabaseURL string

	// Latency is an artificial delay added to every storage call.
	Latency time.Duration

	// SweepInterval is how often watch and board check for overdue tasks.
	SweepInterval time.Duration
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	Backend       string `toml:"backend"`
	DataDir       string `toml:"data_dir"`
	DatabaseURL   string `toml:"database_url"`
	Latency       string `toml:"latency"`
	SweepInterval string `toml:"sweep_interval"`
	Debug         bool   `toml:"debug"`
}

// New creates a Config with defaults for the given config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:           dir,
		Backend:       DefaultBackend,
		DataDir:       filepath.Join(dir, DataDirName),
		SweepInterval: DefaultSweepInterval,
	}, nil
}

// Load builds a Config from defaults, config.toml, .env and the environment.
// Missing files are skipped.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := cfg.loadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	path := c.FilePath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if fc.Backend != "" {
		c.Backend = fc.Backend
	}
	if fc.DataDir != "" {
		c.DataDir = c.resolve(expandHome(fc.DataDir))
	}
	if fc.DatabaseURL != "" {
		c.DatabaseURL = fc.DatabaseURL
	}
	if fc.Latency != "" {
		d, err := parseDuration("latency", fc.Latency)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		c.Latency = d
	}
	if fc.SweepInterval != "" {
		d, err := parseDuration("sweep_interval", fc.SweepInterval)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		c.SweepInterval = d
	}
	c.Debug = c.Debug || fc.Debug
	return nil
}

// loadDotEnv loads <dir>/.env without overriding variables already set.
func (c *Config) loadDotEnv() error {
	path := c.EnvPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TODO_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TODO_DATA_DIR"); v != "" {
		c.DataDir = expandHome(v)
	}
	if v := os.Getenv("TODO_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" && c.DatabaseURL == "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("TODO_LATENCY"); v != "" {
		d, err := parseDuration("TODO_LATENCY", v)
		if err != nil {
			return err
		}
		c.Latency = d
	}
	if v := os.Getenv("TODO_SWEEP_INTERVAL"); v != "" {
		d, err := parseDuration("TODO_SWEEP_INTERVAL", v)
		if err != nil {
			return err
		}
		c.SweepInterval = d
	}
	return nil
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendFile:
		if c.DataDir == "" {
			return errors.New("data_dir is required for the file backend")
		}
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url (or TODO_DATABASE_URL) is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want file, memory or postgres)", c.Backend)
	}
	if c.Latency < 0 {
		return errors.New("latency must not be negative")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep_interval must be positive")
	}
	return nil
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

// resolve makes a relative path relative to the config directory.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnvPath returns the path to the .env file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
