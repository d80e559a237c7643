// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// DEFAULT AND LOAD TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend.BaseURL != "http://localhost:8000/api" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
version = "1.0.0"

[backend]
base_url = "https://chat.example.com/api"
timeout_secs = 30

[ui]
theme = "light"

[downloads]
dir = "/tmp/conversa-docs"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Backend.BaseURL != "https://chat.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	// Missing fields fall back to defaults.
	if cfg.Backend.ChatTimeoutSecs != 120 {
		t.Errorf("ChatTimeoutSecs = %d", cfg.Backend.ChatTimeoutSecs)
	}
}

func TestLoadFromPathInvalidTheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"solarized\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation error for unknown theme")
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend.BaseURL = "not a url"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "backend.base_url") {
		t.Errorf("error = %v", err)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CONVERSA_BACKEND_URL", "http://staging:9000/api")
	t.Setenv("CONVERSA_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "http://staging:9000/api" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = %q after round trip", loaded.UI.Theme)
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTo(Default(), path); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	edited := Default()
	edited.UI.Theme = "light"
	if err := SaveTo(edited, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.UI.Theme != "light" {
			t.Errorf("Theme = %q after reload", cfg.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcherIgnoresInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTo(Default(), path); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) { changed <- cfg })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
		t.Error("invalid edit must not trigger onChange")
	case <-time.After(time.Second):
	}
}

func TestSetValue(t *testing.T) {
	cfg := Default()

	if err := SetValue(cfg, "ui.theme", "light"); err != nil {
		t.Fatalf("SetValue theme: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}

	if err := SetValue(cfg, "backend.timeout_secs", "30"); err != nil {
		t.Fatalf("SetValue timeout: %v", err)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
}

func TestSetValueRejectsBadValues(t *testing.T) {
	cfg := Default()

	if err := SetValue(cfg, "ui.theme", "solarized"); err == nil {
		t.Error("invalid theme accepted")
	}
	if cfg.UI.Theme != Default().UI.Theme {
		t.Errorf("rejected set mutated config: %q", cfg.UI.Theme)
	}

	if err := SetValue(cfg, "backend.timeout_secs", "soon"); err == nil {
		t.Error("non-numeric timeout accepted")
	}
	if err := SetValue(cfg, "no.such.key", "x"); err == nil {
		t.Error("unknown key accepted")
	}
}
