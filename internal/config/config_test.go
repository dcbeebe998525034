package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvToken, EnvTokenFile, EnvLogLevel, EnvProxyMode} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lists.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.Lists.PageSize)
	}
	if cfg.PollInterval() != 10*time.Minute {
		t.Errorf("PollInterval() = %v, want 10m", cfg.PollInterval())
	}
	if cfg.DebounceDelay() != 500*time.Millisecond {
		t.Errorf("DebounceDelay() = %v, want 500ms", cfg.DebounceDelay())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadINI(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config")
	content := `[platform]
base_url = https://share.example.org
token_file = /tmp/nabotix-token

[proxy]
mode = basic
host = proxy.local
port = 3128

[pending]
poll_interval_minutes = 5
notify = true

[lists]
page_size = 25
debounce_ms = 300
auto_load = false

[log]
level = debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "https://share.example.org" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.TokenFile != "/tmp/nabotix-token" {
		t.Errorf("TokenFile = %q", cfg.TokenFile)
	}
	if cfg.ProxyMode != "basic" || cfg.ProxyHost != "proxy.local" || cfg.ProxyPort != 3128 {
		t.Errorf("proxy = %s %s:%d", cfg.ProxyMode, cfg.ProxyHost, cfg.ProxyPort)
	}
	if cfg.Pending.PollIntervalMinutes != 5 || !cfg.Pending.Notify {
		t.Errorf("Pending = %+v", cfg.Pending)
	}
	if cfg.Lists.PageSize != 25 || cfg.Lists.DebounceMS != 300 || cfg.Lists.AutoLoad {
		t.Errorf("Lists = %+v", cfg.Lists)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	env := map[string]string{
		EnvBaseURL:  "https://env.example.org",
		EnvToken:    "tok",
		EnvLogLevel: "",
	}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.BaseURL != "https://env.example.org" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Token != "tok" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("empty env value overrode Log.Level: %q", cfg.Log.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config")
	cfg := New()
	cfg.BaseURL = "https://saved.example.org"
	cfg.Token = "secret"
	cfg.Lists.PageSize = 20

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Error("token written to config file")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want 600", perm)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.BaseURL != cfg.BaseURL || loaded.Lists.PageSize != 20 {
		t.Errorf("loaded = %s / %d", loaded.BaseURL, loaded.Lists.PageSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"defaults", func(*Config) {}, nil},
		{"empty base url", func(c *Config) { c.BaseURL = " " }, ErrMissingBaseURL},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://x" }, ErrInvalidBaseURL},
		{"poll too small", func(c *Config) { c.Pending.PollIntervalMinutes = 0 }, ErrInvalidPollInterval},
		{"poll too large", func(c *Config) { c.Pending.PollIntervalMinutes = 1441 }, ErrInvalidPollInterval},
		{"page size zero", func(c *Config) { c.Lists.PageSize = 0 }, ErrInvalidPageSize},
		{"page size too large", func(c *Config) { c.Lists.PageSize = 1000 }, ErrInvalidPageSize},
		{"negative debounce", func(c *Config) { c.Lists.DebounceMS = -1 }, ErrInvalidDebounce},
		{"bad proxy", func(c *Config) { c.ProxyMode = "socks" }, ErrUnsupportedProxyMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
