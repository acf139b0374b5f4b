package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"TODO_BACKEND", "TODO_DATA_DIR", "TODO_DATABASE_URL", "DATABASE_URL",
	"TODO_LATENCY", "TODO_SWEEP_INTERVAL",
}

// clearEnv blanks the config variables for the test and restores them after.
// Blank values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("expected XDG dir, got %s", got)
	}
}

func TestDefaultConfigDir_Home(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")
	if got := DefaultConfigDir(); got != filepath.Join("/home/tester", ".config", AppName) {
		t.Errorf("expected ~/.config dir, got %s", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("expected file backend, got %s", cfg.Backend)
	}
	if cfg.DataDir != filepath.Join(dir, DataDirName) {
		t.Errorf("unexpected data dir %s", cfg.DataDir)
	}
	if cfg.Latency != 0 || cfg.SweepInterval != time.Hour {
		t.Errorf("unexpected durations latency=%s sweep=%s", cfg.Latency, cfg.SweepInterval)
	}
	if cfg.TokenPath() != filepath.Join(dir, "google_token.json") {
		t.Errorf("unexpected token path %s", cfg.TokenPath())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), `
backend = "memory"
data_dir = "store"
latency = "250ms"
sweep_interval = "30m"
debug = true
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("backend: got %s", cfg.Backend)
	}
	if cfg.DataDir != filepath.Join(dir, "store") {
		t.Errorf("relative data_dir should resolve against config dir, got %s", cfg.DataDir)
	}
	if cfg.Latency != 250*time.Millisecond || cfg.SweepInterval != 30*time.Minute {
		t.Errorf("durations: latency=%s sweep=%s", cfg.Latency, cfg.SweepInterval)
	}
	if !cfg.Debug {
		t.Error("expected debug from file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), `backend = "memory"`+"\n"+`latency = "1s"`)
	t.Setenv("TODO_BACKEND", "postgres")
	t.Setenv("TODO_DATABASE_URL", "postgres://u@localhost/todo")
	t.Setenv("TODO_LATENCY", "0s")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendPostgres || cfg.DatabaseURL != "postgres://u@localhost/todo" || cfg.Latency != 0 {
		t.Errorf("env did not override file: %+v", cfg)
	}
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://fallback/todo")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://fallback/todo" {
		t.Errorf("expected DATABASE_URL fallback, got %q", cfg.DatabaseURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// Unset (not blank) so the .env file may supply them; t.Setenv above
	// restores the original values afterwards.
	os.Unsetenv("TODO_SWEEP_INTERVAL")
	os.Unsetenv("TODO_BACKEND")
	t.Setenv("TODO_LATENCY", "5ms")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, EnvFile), "TODO_SWEEP_INTERVAL=10m\nTODO_BACKEND=memory\nTODO_LATENCY=9s\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SweepInterval != 10*time.Minute || cfg.Backend != BackendMemory {
		t.Errorf(".env values not applied: %+v", cfg)
	}
	if cfg.Latency != 5*time.Millisecond {
		t.Errorf(".env must not override the real environment, got latency %s", cfg.Latency)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		want string
	}{
		{"unknown backend", `backend = "sqlite"`, nil, "unknown backend"},
		{"postgres without url", `backend = "postgres"`, nil, "database_url"},
		{"bad latency", `latency = "soon"`, nil, "invalid latency"},
		{"bad env interval", "", map[string]string{"TODO_SWEEP_INTERVAL": "hourly"}, "TODO_SWEEP_INTERVAL"},
		{"zero interval", `sweep_interval = "0s"`, nil, "sweep_interval must be positive"},
		{"negative latency", "", map[string]string{"TODO_LATENCY": "-1s"}, "must not be negative"},
		{"malformed toml", `backend = `, nil, "config.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, ConfigFile), tt.file)
			}
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTokenHelpers(t *testing.T) {
	cfg, _ := New(t.TempDir())
	if cfg.HasToken() {
		t.Fatal("unexpected token")
	}
	writeFile(t, cfg.TokenPath(), "{}")
	if !cfg.HasToken() {
		t.Fatal("expected token")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatal(err)
	}
	if cfg.HasToken() {
		t.Error("token still present after RemoveToken")
	}
}
