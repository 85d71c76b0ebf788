package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/config"
	"github.com/todolite/todolite/internal/output"
)

// NewConfigCmd creates the config command for managing configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage todolite configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > local > global > defaults

Config locations:
  - Global: ~/.config/todolite/config.json
  - Local:  .todolite/config.json (any parent directory; cannot set base_url)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}
	cfg := app.Config

	keys := []struct {
		key     string
		value   string
		include bool
	}{
		{"base_url", cfg.BaseURL, true},
		{"timeout", cfg.Timeout.String(), true},
		{"max_retries", strconv.Itoa(cfg.MaxRetries), true},
		{"page_size", strconv.Itoa(cfg.PageSize), true},
		{"format", cfg.Format, cfg.Format != ""},
		{"log_level", cfg.LogLevel, cfg.LogLevel != ""},
		{"state_dir", cfg.StateDir, cfg.StateDir != ""},
		{"listen", cfg.Listen, cfg.Listen != ""},
		{"store", cfg.Store, cfg.Store != ""},
		{"store_dsn", cfg.StoreDSN, cfg.StoreDSN != ""},
		{"seed_file", cfg.SeedFile, cfg.SeedFile != ""},
		{"stats", fmt.Sprintf("%t", cfg.Stats != nil && *cfg.Stats), cfg.Stats != nil},
		{"verbose", fmt.Sprintf("%d", derefInt(cfg.Verbose)), cfg.Verbose != nil},
	}

	configData := make(map[string]any)
	for _, k := range keys {
		if !k.include {
			continue
		}
		source := cfg.Sources[k.key]
		if source == "" {
			source = string(config.SourceDefault)
		}
		configData[k.key] = map[string]string{
			"value":  k.value,
			"source": source,
		}
	}

	return app.OK(configData,
		output.WithSummary("Effective configuration"),
		output.WithBreadcrumbs(
			output.Breadcrumb{
				Action:      "set",
				Cmd:         "todolite config set <key> <value>",
				Description: "Set config value",
			},
		),
	)
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize local config file",
		Long:  "Create a local .todolite/config.json file in the current directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			configFile := filepath.Join(".todolite", "config.json")
			if _, err := os.Stat(configFile); err == nil {
				return app.OK(map[string]any{
					"exists": true,
					"path":   configFile,
				}, output.WithSummary(fmt.Sprintf("Config file already exists: %s", configFile)))
			}

			if err := os.MkdirAll(filepath.Dir(configFile), 0700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(configFile, []byte("{}\n"), 0600); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}

			return app.OK(map[string]any{
				"created": true,
				"path":    configFile,
			},
				output.WithSummary(fmt.Sprintf("Created: %s", configFile)),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "set",
						Cmd:         "todolite config set page_size 10",
						Description: "Set page size",
					},
				),
			)
		},
	}
}

// settableKeys lists the keys config set accepts.
var settableKeys = map[string]bool{
	"base_url":    true,
	"timeout":     true,
	"max_retries": true,
	"page_size":   true,
	"format":      true,
	"log_level":   true,
	"state_dir":   true,
	"listen":      true,
	"store":       true,
	"store_dsn":   true,
	"seed_file":   true,
	"stats":       true,
	"verbose":     true,
}

func validKeyError(key string) error {
	names := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return output.ErrUsage(fmt.Sprintf("Invalid config key %q. Valid keys: %s", key, strings.Join(names, ", ")))
}

// configPathFor returns the file config set/unset edit.
func configPathFor(global bool) (path, scope string) {
	if global {
		return filepath.Join(config.GlobalConfigDir(), "config.json"), "global"
	}
	return filepath.Join(".todolite", "config.json"), "local"
}

// coerceConfigValue validates value for key and returns its JSON form.
func coerceConfigValue(key, value string) (any, error) {
	switch key {
	case "stats":
		b, ok := parseBoolFlag(value)
		if !ok {
			return nil, output.ErrUsage("stats must be true/false (or 1/0)")
		}
		return b, nil
	case "verbose":
		level, err := strconv.Atoi(value)
		if err != nil || level < 0 || level > 2 {
			return nil, output.ErrUsage("verbose must be 0, 1, or 2")
		}
		return level, nil
	case "max_retries", "page_size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (key == "max_retries" && n < 1) {
			return nil, output.ErrUsage(fmt.Sprintf("%s must be a non-negative integer", key))
		}
		return n, nil
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			if _, err := strconv.Atoi(value); err != nil {
				return nil, output.ErrUsage("timeout must be a duration (10s) or seconds")
			}
		}
		return value, nil
	case "store":
		switch value {
		case "memory", "sqlite", "redis":
			return value, nil
		}
		return nil, output.ErrUsage("store must be memory, sqlite or redis")
	case "format":
		if _, ok := output.ParseFormat(value); !ok {
			return nil, output.ErrUsage("format must be auto, json, markdown, styled, quiet, ids or count")
		}
		return value, nil
	default:
		return value, nil
	}
}

func newConfigSetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the local or global config file.

Valid keys: base_url, timeout, max_retries, page_size, format, log_level,
            state_dir, listen, store, store_dsn, seed_file, stats, verbose`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if !settableKeys[key] {
				return validKeyError(key)
			}
			if key == "base_url" && !global {
				return output.ErrUsageHint("base_url can only be set globally", "todolite config set base_url <url> --global")
			}

			typed, err := coerceConfigValue(key, value)
			if err != nil {
				return err
			}

			configPath, scope := configPathFor(global)
			configData, err := readConfigFile(configPath)
			if err != nil {
				return err
			}
			configData[key] = typed

			if err := writeConfigFile(configPath, configData); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"key":    key,
				"value":  value,
				"scope":  scope,
				"path":   configPath,
				"status": "set",
			},
				output.WithSummary(fmt.Sprintf("Set %s = %s (%s)", key, value, scope)),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "show",
						Cmd:         "todolite config show",
						Description: "View config",
					},
				),
			)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Set in global config (~/.config/todolite/)")

	return cmd
}

func newConfigUnsetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the local or global config file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key := args[0]
			if !settableKeys[key] {
				return validKeyError(key)
			}

			configPath, scope := configPathFor(global)
			configData, err := readConfigFile(configPath)
			if err != nil {
				return err
			}

			status := "not_set"
			if _, ok := configData[key]; ok {
				delete(configData, key)
				if err := writeConfigFile(configPath, configData); err != nil {
					return err
				}
				status = "unset"
			}

			return app.OK(map[string]any{
				"key":    key,
				"scope":  scope,
				"path":   configPath,
				"status": status,
			}, output.WithSummary(fmt.Sprintf("Unset %s (%s)", key, scope)))
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Unset in global config")

	return cmd
}

// readConfigFile loads a config file as a map. A missing file is empty.
func readConfigFile(path string) (map[string]any, error) {
	configData := make(map[string]any)
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config location
	if os.IsNotExist(err) {
		return configData, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &configData); err != nil {
		return nil, output.ErrUsageHint(
			fmt.Sprintf("Config file %s is not valid JSON", path),
			"Fix or remove the file, then retry",
		)
	}
	return configData, nil
}

func writeConfigFile(path string, configData map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(configData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := atomicWriteFile(path, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func parseBoolFlag(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// atomicWriteFile writes data to a file atomically using temp+rename.
func atomicWriteFile(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	// Windows: rename fails when the destination exists.
	if err := os.Rename(tmpPath, path); err != nil && runtime.GOOS == "windows" {
		_ = os.Remove(path)
		return os.Rename(tmpPath, path)
	} else { //nolint:revive // mirrors the two-branch rename pattern
		return err
	}
}
