// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the resolved configuration.
type Config struct {
	// Remote settings
	BaseURL    string        `json:"base_url"`
	Timeout    time.Duration `json:"-"`
	MaxRetries int           `json:"max_retries"`

	// View settings
	PageSize int    `json:"page_size"`
	Format   string `json:"format"`

	// Logging and state
	LogLevel string `json:"log_level"`
	StateDir string `json:"state_dir"`

	// Reference server settings (todolite serve)
	Listen   string `json:"listen"`
	Store    string `json:"store"`
	StoreDSN string `json:"store_dsn"`
	SeedFile string `json:"seed_file"`

	// Behavior preferences, overridable by flags
	Stats   *bool `json:"stats,omitempty"`
	Verbose *int  `json:"verbose,omitempty"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL  string
	PageSize *int // nil when the flag was not given; 0 means one page
	Format   string
	LogLevel string
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		BaseURL:    "http://localhost:3000",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		PageSize:   5,
		Format:     "auto",
		LogLevel:   "warn",
		Listen:     ":3000",
		Store:      "memory",
		Sources:    make(map[string]string),
	}
	for _, key := range []string{"base_url", "timeout", "max_retries", "page_size", "format", "log_level", "listen", "store"} {
		cfg.Sources[key] = string(SourceDefault)
	}
	return cfg
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, globalConfigPath(), SourceGlobal)

	for _, path := range localConfigPaths() {
		loadFromFile(cfg, path, SourceLocal)
	}

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if cfg.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative (from %s)", cfg.Sources["page_size"])
	}
	if cfg.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1 (from %s)", cfg.Sources["max_retries"])
	}
	switch cfg.Store {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite or redis)", cfg.Store)
	}
	return nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	set := func(key string) { cfg.Sources[key] = string(source) }

	// base_url decides where every request goes. A config file dropped into a
	// project directory must not redirect it.
	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		if source == SourceLocal {
			fmt.Fprintf(os.Stderr, "warning: ignoring base_url %q from local config at %s\n", v, path)
		} else {
			cfg.BaseURL = v
			set("base_url")
		}
	}
	if v, ok := parseTimeout(fileCfg["timeout"]); ok {
		cfg.Timeout = v
		set("timeout")
	}
	if v, ok := getInt(fileCfg, "max_retries"); ok {
		cfg.MaxRetries = v
		set("max_retries")
	}
	if v, ok := getInt(fileCfg, "page_size"); ok {
		cfg.PageSize = v
		set("page_size")
	}
	for key, dst := range map[string]*string{
		"format":    &cfg.Format,
		"log_level": &cfg.LogLevel,
		"state_dir": &cfg.StateDir,
		"listen":    &cfg.Listen,
		"store":     &cfg.Store,
		"store_dsn": &cfg.StoreDSN,
		"seed_file": &cfg.SeedFile,
	} {
		if v, ok := fileCfg[key].(string); ok && v != "" {
			*dst = v
			set(key)
		}
	}
	if v, ok := fileCfg["stats"].(bool); ok {
		cfg.Stats = &v
		set("stats")
	}
	if v, ok := getInt(fileCfg, "verbose"); ok && v >= 0 && v <= 2 {
		cfg.Verbose = &v
		set("verbose")
	}
}

// LoadFromEnv loads configuration from TODOLITE_* environment variables.
func LoadFromEnv(cfg *Config) {
	set := func(key string) { cfg.Sources[key] = string(SourceEnv) }

	if v := os.Getenv("TODOLITE_BASE_URL"); v != "" {
		cfg.BaseURL = v
		set("base_url")
	}
	if v, ok := parseTimeout(os.Getenv("TODOLITE_TIMEOUT")); ok {
		cfg.Timeout = v
		set("timeout")
	}
	if v, err := strconv.Atoi(os.Getenv("TODOLITE_MAX_RETRIES")); err == nil {
		cfg.MaxRetries = v
		set("max_retries")
	}
	if v, err := strconv.Atoi(os.Getenv("TODOLITE_PAGE_SIZE")); err == nil {
		cfg.PageSize = v
		set("page_size")
	}
	for env, field := range map[string]struct {
		key string
		dst *string
	}{
		"TODOLITE_FORMAT":    {"format", &cfg.Format},
		"TODOLITE_LOG_LEVEL": {"log_level", &cfg.LogLevel},
		"TODOLITE_STATE_DIR": {"state_dir", &cfg.StateDir},
		"TODOLITE_LISTEN":    {"listen", &cfg.Listen},
		"TODOLITE_STORE":     {"store", &cfg.Store},
		"TODOLITE_STORE_DSN": {"store_dsn", &cfg.StoreDSN},
	} {
		if v := os.Getenv(env); v != "" {
			*field.dst = v
			set(field.key)
		}
	}
	if v := os.Getenv("TODOLITE_STATS"); v != "" {
		if b, ok := parseEnvBool(v); ok {
			cfg.Stats = &b
			set("stats")
		}
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.PageSize != nil {
		cfg.PageSize = *o.PageSize
		cfg.Sources["page_size"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
		cfg.Sources["log_level"] = string(SourceFlag)
	}
}

// parseEnvBool parses a boolean environment variable strictly.
// Unrecognized values are ignored to preserve three-state pointer semantics.
func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// parseTimeout accepts a Go duration string ("15s") or a number of seconds.
func parseTimeout(v any) (time.Duration, bool) {
	switch val := v.(type) {
	case float64:
		if val > 0 {
			return time.Duration(val * float64(time.Second)), true
		}
	case string:
		if val == "" {
			return 0, false
		}
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d, true
		}
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Second, true
		}
	}
	return 0, false
}

// getInt extracts an integral JSON number, or a string holding one.
func getInt(m map[string]any, key string) (int, bool) {
	switch val := m[key].(type) {
	case float64:
		if val == float64(int(val)) {
			return int(val), true
		}
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Path helpers

func globalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "todolite")
}

// localConfigPaths returns .todolite/config.json paths from the filesystem
// root down to the working directory, so closer files override.
func localConfigPaths() []string {
	dir, err := os.Getwd()
	if err != nil {
		return nil
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	var paths []string
	for {
		cfgPath := filepath.Join(dir, ".todolite", "config.json")
		if _, err := os.Stat(cfgPath); err == nil {
			paths = append(paths, cfgPath)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
		paths[i], paths[j] = paths[j], paths[i]
	}
	return paths
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
