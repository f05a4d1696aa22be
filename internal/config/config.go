// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete authvault configuration.
type Config struct {
	// Version is the config schema version.
	Version string `toml:"version" json:"version"`

	// Store configuration
	Store StoreConfig `toml:"store" json:"store"`

	// Security configuration
	Security SecurityConfig `toml:"security" json:"security"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// StoreConfig contains the credential store configuration.
type StoreConfig struct {
	// Path is the location of the credential file (empty = default
	// ~/.authvault/users.json).
	Path string `toml:"path" json:"path"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// MaxLoginAttempts is the number of consecutive failed login
	// attempts before the session locks out. Valid range is 1-10.
	MaxLoginAttempts int `toml:"max_login_attempts" json:"max_login_attempts"`
	// AuditEnabled enables audit logging.
	AuditEnabled bool `toml:"audit_enabled" json:"audit_enabled"`
	// AuditLogPath is the path to the audit log file (empty = default
	// ~/.authvault/audit.log).
	AuditLogPath string `toml:"audit_log_path" json:"audit_log_path"`
	// AuditMaxSizeMB is the audit log size at which rotation happens.
	AuditMaxSizeMB int64 `toml:"audit_max_size_mb" json:"audit_max_size_mb"`
	// LoginRatePerMinute throttles how many login prompts the console
	// serves per minute. 0 disables throttling.
	LoginRatePerMinute int `toml:"login_rate_per_minute" json:"login_rate_per_minute"`
}

// UIConfig contains console appearance configuration.
type UIConfig struct {
	// Color enables styled terminal output.
	Color bool `toml:"color" json:"color"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Store:   StoreConfig{},
		Security: SecurityConfig{
			MaxLoginAttempts:   3,
			AuditEnabled:       true,
			AuditMaxSizeMB:     10,
			LoginRatePerMinute: 30,
		},
		UI: UIConfig{
			Color: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the authvault configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".authvault"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// StorePath resolves the credential file location, falling back to the
// default under the config directory.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "users.json"), nil
}

// AuditLogPath resolves the audit log location, falling back to the
// default under the config directory.
func (c *Config) AuditLogPath() (string, error) {
	if c.Security.AuditLogPath != "" {
		return c.Security.AuditLogPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.log"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := loadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := loadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func loadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// loadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func loadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Security.MaxLoginAttempts == 0 {
		c.Security.MaxLoginAttempts = defaults.Security.MaxLoginAttempts
	}
	if c.Security.AuditMaxSizeMB == 0 {
		c.Security.AuditMaxSizeMB = defaults.Security.AuditMaxSizeMB
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
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

	fmt.Fprintln(file, "# authvault configuration file")
	fmt.Fprintln(file, "# Generated by authvault - edit with care")
	fmt.Fprintln(file)

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
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

	// SECURITY: A limit above 10 makes the lockout meaningless.
	if c.Security.MaxLoginAttempts < 1 || c.Security.MaxLoginAttempts > 10 {
		errs = append(errs, ValidationError{
			Field:   "security.max_login_attempts",
			Message: fmt.Sprintf("max_login_attempts must be 1-10, got %d", c.Security.MaxLoginAttempts),
		})
	}

	if c.Security.AuditMaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "security.audit_max_size_mb",
			Message: fmt.Sprintf("audit_max_size_mb must be at least 1, got %d", c.Security.AuditMaxSizeMB),
		})
	}

	if c.Security.LoginRatePerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "security.login_rate_per_minute",
			Message: fmt.Sprintf("login_rate_per_minute cannot be negative, got %d", c.Security.LoginRatePerMinute),
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
//   - AUTHVAULT_STORE: overrides store.path
//   - AUTHVAULT_MAX_ATTEMPTS: overrides security.max_login_attempts
//   - AUTHVAULT_AUDIT: set to "0" or "false" to disable audit logging
//   - AUTHVAULT_AUDIT_LOG: overrides security.audit_log_path
//   - AUTHVAULT_NO_COLOR: set to "1" or "true" to disable styled output
func (c *Config) ApplyEnvOverrides() {
	if path := os.Getenv("AUTHVAULT_STORE"); path != "" {
		c.Store.Path = path
	}

	if attempts := os.Getenv("AUTHVAULT_MAX_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil {
			c.Security.MaxLoginAttempts = n
		}
	}

	if auditFlag := os.Getenv("AUTHVAULT_AUDIT"); auditFlag != "" {
		c.Security.AuditEnabled = auditFlag != "0" && strings.ToLower(auditFlag) != "false"
	}

	if logPath := os.Getenv("AUTHVAULT_AUDIT_LOG"); logPath != "" {
		c.Security.AuditLogPath = logPath
	}

	if noColor := os.Getenv("AUTHVAULT_NO_COLOR"); noColor != "" {
		c.UI.Color = !(noColor == "1" || strings.ToLower(noColor) == "true")
	}
}
