// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for conversa.
//
// Configuration lives in TOML at ~/.conversa/config.toml, with sensible
// defaults, environment variable overrides, and validation. The file is
// watched at runtime so theme and model edits apply without a restart.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete conversa configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Downloads configuration
	Downloads DownloadsConfig `toml:"downloads"`
}

// BackendConfig contains backend connection configuration.
type BackendConfig struct {
	// BaseURL is the backend API base URL
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the timeout for list/delete/vote requests
	TimeoutSecs int `toml:"timeout_secs"`
	// ChatTimeoutSecs is the timeout for message and attachment requests,
	// which block on model generation server-side
	ChatTimeoutSecs int `toml:"chat_timeout_secs"`
	// Model is the preferred assistant model label shown in the status bar
	Model string `toml:"model"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact transcript layout
	CompactMode bool `toml:"compact_mode"`
	// ShowTimestamps renders message times in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
}

// DownloadsConfig controls where generated documents are saved.
type DownloadsConfig struct {
	// Dir is the target directory (empty = ~/Downloads)
	Dir string `toml:"dir"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Version: "1.0.0",
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8000/api",
			TimeoutSecs:     15,
			ChatTimeoutSecs: 120,
			Model:           "gpt-4o",
		},
		UI: UIConfig{
			Theme:          "dark",
			CompactMode:    false,
			ShowTimestamps: false,
		},
		Downloads: DownloadsConfig{
			Dir: filepath.Join(home, "Downloads"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the conversa configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".conversa"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.SetDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills in missing or zero-value fields with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Backend.ChatTimeoutSecs == 0 {
		c.Backend.ChatTimeoutSecs = defaults.Backend.ChatTimeoutSecs
	}
	if c.Backend.Model == "" {
		c.Backend.Model = defaults.Backend.Model
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Downloads.Dir == "" {
		c.Downloads.Dir = defaults.Downloads.Dir
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo saves the configuration to a TOML file with 0600 permissions.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# conversa configuration file")
	fmt.Fprintln(file, "# Generated by conversa - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Backend.BaseURL),
			})
		}
	}

	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: "must be non-negative",
		})
	}
	if c.Backend.ChatTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.chat_timeout_secs",
			Message: "must be non-negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CONVERSA_BACKEND_URL: overrides backend.base_url
//   - CONVERSA_MODEL: overrides backend.model
//   - CONVERSA_THEME: overrides ui.theme
//   - CONVERSA_DOWNLOADS_DIR: overrides downloads.dir
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("CONVERSA_BACKEND_URL"); base != "" {
		c.Backend.BaseURL = base
	}
	if model := os.Getenv("CONVERSA_MODEL"); model != "" {
		c.Backend.Model = model
	}
	if theme := os.Getenv("CONVERSA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if dir := os.Getenv("CONVERSA_DOWNLOADS_DIR"); dir != "" {
		c.Downloads.Dir = dir
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// KEYED UPDATES
// =============================================================================

// SetValue sets a configuration field addressed by its dotted TOML key, the
// same notation 'config show' prints. The updated config is validated before
// the change is accepted.
func SetValue(c *Config, key, value string) error {
	candidate := c.Clone()

	switch strings.ToLower(key) {
	case "backend.base_url":
		candidate.Backend.BaseURL = value
	case "backend.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: not a number: %q", key, value)
		}
		candidate.Backend.TimeoutSecs = n
	case "backend.chat_timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: not a number: %q", key, value)
		}
		candidate.Backend.ChatTimeoutSecs = n
	case "backend.model":
		candidate.Backend.Model = value
	case "ui.theme":
		candidate.UI.Theme = strings.ToLower(value)
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: not a boolean: %q", key, value)
		}
		candidate.UI.CompactMode = b
	case "ui.show_timestamps":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: not a boolean: %q", key, value)
		}
		candidate.UI.ShowTimestamps = b
	case "downloads.dir":
		candidate.Downloads.Dir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := candidate.Validate(); err != nil {
		return err
	}
	*c = *candidate
	return nil
}
