// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Security.MaxLoginAttempts != 3 {
		t.Errorf("MaxLoginAttempts = %d, want 3", cfg.Security.MaxLoginAttempts)
	}
	if !cfg.Security.AuditEnabled {
		t.Error("audit logging should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0"

[store]
path = "/tmp/vault/users.json"

[security]
max_login_attempts = 5
audit_enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Store.Path != "/tmp/vault/users.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Security.MaxLoginAttempts != 5 {
		t.Errorf("MaxLoginAttempts = %d, want 5", cfg.Security.MaxLoginAttempts)
	}
	if cfg.Security.AuditEnabled {
		t.Error("audit_enabled = false not honored")
	}
	// Unset values fall back to defaults.
	if cfg.Security.AuditMaxSizeMB != 10 {
		t.Errorf("AuditMaxSizeMB = %d, want default 10", cfg.Security.AuditMaxSizeMB)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"security": {"max_login_attempts": 4}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Security.MaxLoginAttempts != 4 {
		t.Errorf("MaxLoginAttempts = %d, want 4", cfg.Security.MaxLoginAttempts)
	}
}

func TestValidateRejectsBadAttempts(t *testing.T) {
	cfg := Default()
	cfg.Security.MaxLoginAttempts = 99

	err := cfg.Validate()
	if err == nil {
		t.Fatal("want validation error for max_login_attempts = 99")
	}
	if !strings.Contains(err.Error(), "max_login_attempts") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AUTHVAULT_STORE", "/custom/users.json")
	t.Setenv("AUTHVAULT_MAX_ATTEMPTS", "7")
	t.Setenv("AUTHVAULT_AUDIT", "false")
	t.Setenv("AUTHVAULT_NO_COLOR", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Store.Path != "/custom/users.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Security.MaxLoginAttempts != 7 {
		t.Errorf("MaxLoginAttempts = %d, want 7", cfg.Security.MaxLoginAttempts)
	}
	if cfg.Security.AuditEnabled {
		t.Error("AUTHVAULT_AUDIT=false not honored")
	}
	if cfg.UI.Color {
		t.Error("AUTHVAULT_NO_COLOR=1 not honored")
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Security.MaxLoginAttempts = 6
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Security.MaxLoginAttempts != 6 {
		t.Errorf("round trip MaxLoginAttempts = %d, want 6", loaded.Security.MaxLoginAttempts)
	}
}

func TestStorePathFallback(t *testing.T) {
	cfg := Default()
	cfg.Store.Path = ""

	path, err := cfg.StorePath()
	if err != nil {
		t.Fatalf("StorePath: %v", err)
	}
	if filepath.Base(path) != "users.json" {
		t.Errorf("default store path = %q", path)
	}

	cfg.Store.Path = "/explicit/users.json"
	path, err = cfg.StorePath()
	if err != nil {
		t.Fatalf("StorePath: %v", err)
	}
	if path != "/explicit/users.json" {
		t.Errorf("explicit store path = %q", path)
	}
}
