// Package config provides configuration management for the Nabotix client.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
)

// Config is the runtime configuration of the client.
//
// Config file location: ~/.config/nabotix/config (Windows: %USERPROFILE%\.config\nabotix\config)
//
// INI format:
//
//	[platform]
//	base_url = https://share.nabotix.example
//	token_file = ~/.config/nabotix/token
//
//	[proxy]
//	mode = no-proxy
//
//	[pending]
//	poll_interval_minutes = 10
//	initial_delay_seconds = 1
//	notify = true
//
//	[lists]
//	page_size = 10
//	debounce_ms = 500
//	auto_load = true
//
//	[log]
//	level = info
//	file =
type Config struct {
	// Platform connection settings
	BaseURL   string
	Token     string // Bearer token; usually read from TokenFile instead
	TokenFile string

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	Pending PendingConfig
	Lists   ListConfig
	Log     LogConfig
}

// PendingConfig controls the pending-count poller.
type PendingConfig struct {
	// PollIntervalMinutes is the full-refresh period. Minimum 1, maximum 1440, default 10.
	PollIntervalMinutes int

	// InitialDelaySeconds delays the opportunistic first refresh after start.
	InitialDelaySeconds int

	// Notify sends a desktop notification when the pending total grows.
	Notify bool
}

// ListConfig controls list views.
type ListConfig struct {
	PageSize   int
	DebounceMS int
	AutoLoad   bool
}

// LogConfig controls logging.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Validation errors
var (
	ErrMissingBaseURL       = errors.New("platform base_url is required")
	ErrInvalidBaseURL       = errors.New("platform base_url must start with http:// or https://")
	ErrInvalidPollInterval  = errors.New("poll_interval_minutes must be between 1 and 1440")
	ErrInvalidPageSize      = fmt.Errorf("page_size must be between 1 and %d", constants.MaxPageSize)
	ErrInvalidDebounce      = errors.New("debounce_ms must not be negative")
	ErrUnsupportedProxyMode = errors.New("unsupported proxy mode")
)

// Environment overrides, applied after the INI file.
const (
	EnvBaseURL   = "NABOTIX_BASE_URL"
	EnvToken     = "NABOTIX_TOKEN"
	EnvTokenFile = "NABOTIX_TOKEN_FILE"
	EnvLogLevel  = "NABOTIX_LOG_LEVEL"
	EnvProxyMode = "NABOTIX_PROXY_MODE"
)

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		BaseURL:   "http://localhost:8080",
		TokenFile: DefaultTokenPath(),
		ProxyMode: "no-proxy",
		Pending: PendingConfig{
			PollIntervalMinutes: int(constants.PendingPollInterval / time.Minute),
			InitialDelaySeconds: int(constants.PendingInitialDelay / time.Second),
			Notify:              false,
		},
		Lists: ListConfig{
			PageSize:   constants.DefaultPageSize,
			DebounceMS: int(constants.SearchDebounceDelay / time.Millisecond),
			AutoLoad:   true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load reads configuration from an INI file, then applies .env and environment overrides.
// A missing file yields defaults and no error; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		iniFile, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.readINI(iniFile)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	// .env in the working directory is optional
	_ = godotenv.Load()
	cfg.ApplyEnv(os.LookupEnv)

	return cfg, nil
}

func (cfg *Config) readINI(f *ini.File) {
	platform := f.Section("platform")
	cfg.BaseURL = platform.Key("base_url").MustString(cfg.BaseURL)
	cfg.Token = platform.Key("token").String()
	cfg.TokenFile = expandHome(platform.Key("token_file").MustString(cfg.TokenFile))

	proxy := f.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.ProxyPassword = proxy.Key("password").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	pending := f.Section("pending")
	cfg.Pending.PollIntervalMinutes = pending.Key("poll_interval_minutes").MustInt(cfg.Pending.PollIntervalMinutes)
	cfg.Pending.InitialDelaySeconds = pending.Key("initial_delay_seconds").MustInt(cfg.Pending.InitialDelaySeconds)
	cfg.Pending.Notify = pending.Key("notify").MustBool(cfg.Pending.Notify)

	lists := f.Section("lists")
	cfg.Lists.PageSize = lists.Key("page_size").MustInt(cfg.Lists.PageSize)
	cfg.Lists.DebounceMS = lists.Key("debounce_ms").MustInt(cfg.Lists.DebounceMS)
	cfg.Lists.AutoLoad = lists.Key("auto_load").MustBool(cfg.Lists.AutoLoad)

	logSection := f.Section("log")
	cfg.Log.Level = logSection.Key("level").MustString(cfg.Log.Level)
	cfg.Log.File = expandHome(logSection.Key("file").String())
	cfg.Log.MaxSizeMB = logSection.Key("max_size_mb").MustInt(cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = logSection.Key("max_backups").MustInt(cfg.Log.MaxBackups)
}

// ApplyEnv overrides settings from environment variables using lookup.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvToken); ok && v != "" {
		cfg.Token = v
	}
	if v, ok := lookup(EnvTokenFile); ok && v != "" {
		cfg.TokenFile = expandHome(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvProxyMode); ok && v != "" {
		cfg.ProxyMode = v
	}
}

// Save writes the configuration to an INI file with owner-only permissions.
// The bearer token is never written here; it lives in the token file.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"platform", [][2]string{
			{"base_url", cfg.BaseURL},
			{"token_file", cfg.TokenFile},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.ProxyMode},
			{"host", cfg.ProxyHost},
			{"port", strconv.Itoa(cfg.ProxyPort)},
			{"user", cfg.ProxyUser},
			{"no_proxy", cfg.NoProxy},
			{"warmup", strconv.FormatBool(cfg.ProxyWarmup)},
		}},
		{"pending", [][2]string{
			{"poll_interval_minutes", strconv.Itoa(cfg.Pending.PollIntervalMinutes)},
			{"initial_delay_seconds", strconv.Itoa(cfg.Pending.InitialDelaySeconds)},
			{"notify", strconv.FormatBool(cfg.Pending.Notify)},
		}},
		{"lists", [][2]string{
			{"page_size", strconv.Itoa(cfg.Lists.PageSize)},
			{"debounce_ms", strconv.Itoa(cfg.Lists.DebounceMS)},
			{"auto_load", strconv.FormatBool(cfg.Lists.AutoLoad)},
		}},
		{"log", [][2]string{
			{"level", cfg.Log.Level},
			{"file", cfg.Log.File},
			{"max_size_mb", strconv.Itoa(cfg.Log.MaxSizeMB)},
			{"max_backups", strconv.Itoa(cfg.Log.MaxBackups)},
		}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.values {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the configuration before any API client is built.
func (cfg *Config) Validate() error {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return ErrMissingBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return ErrInvalidBaseURL
	}

	switch strings.ToLower(cfg.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedProxyMode, cfg.ProxyMode)
	}

	if cfg.Pending.PollIntervalMinutes < 1 || cfg.Pending.PollIntervalMinutes > 1440 {
		return ErrInvalidPollInterval
	}
	if cfg.Lists.PageSize < 1 || cfg.Lists.PageSize > constants.MaxPageSize {
		return ErrInvalidPageSize
	}
	if cfg.Lists.DebounceMS < 0 {
		return ErrInvalidDebounce
	}
	return nil
}

// PollInterval returns the pending poll period as a duration.
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.Pending.PollIntervalMinutes) * time.Minute
}

// InitialDelay returns the delay before the first opportunistic refresh.
func (cfg *Config) InitialDelay() time.Duration {
	return time.Duration(cfg.Pending.InitialDelaySeconds) * time.Second
}

// DebounceDelay returns the search settling window.
func (cfg *Config) DebounceDelay() time.Duration {
	return time.Duration(cfg.Lists.DebounceMS) * time.Millisecond
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
