// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides an append-only audit trail for authentication
// and administration events.
//
// Events are written as one JSON object per line. When a signing key is
// configured, each line carries an HMAC-SHA256 tag over its own JSON
// body so after-the-fact edits to the log are detectable. The key is
// derived from the AUTHVAULT_AUDIT_KEY passphrase; without it, events
// are written unsigned.
package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

// KeyEnvVar is the environment variable holding the signing passphrase.
const KeyEnvVar = "AUTHVAULT_AUDIT_KEY"

// DefaultMaxFileSize is the max log size before rotation (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// keySalt is a fixed application salt for passphrase derivation. The
// passphrase itself is the secret; the salt only separates this use
// from other tools deriving keys from the same passphrase.
var keySalt = []byte("authvault-audit-v1")

const keyIterations = 10000

// Event is a single audit log entry.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Username  string            `json:"username,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	// HMAC is the hex tag over the event line without this field.
	// Empty when the logger has no signing key.
	HMAC string `json:"hmac,omitempty"`
}

// Logger writes audit events to an append-only JSONL file. Thread-safe.
type Logger struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	enabled bool
	maxSize int64
	key     []byte // nil when signing is disabled
}

// New opens (creating if needed) an audit log at path. The signing key,
// if any, is derived from the AUTHVAULT_AUDIT_KEY environment variable.
func New(path string) (*Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{
		path:    path,
		file:    file,
		enabled: true,
		maxSize: DefaultMaxFileSize,
		key:     keyFromEnv(),
	}, nil
}

// Disabled returns a logger that drops every event. Used when auditing
// is switched off in the config.
func Disabled() *Logger {
	return &Logger{enabled: false}
}

// keyFromEnv derives the HMAC key from the passphrase env var.
// Returns nil when the variable is unset or empty.
func keyFromEnv() []byte {
	passphrase := os.Getenv(KeyEnvVar)
	if passphrase == "" {
		return nil
	}
	return pbkdf2.Key([]byte(passphrase), keySalt, keyIterations, 32, sha256.New)
}

// Log writes one event. The ID and timestamp are filled in if unset.
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.file == nil {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if l.key != nil {
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode audit event: %w", err)
		}
		mac := hmac.New(sha256.New, l.key)
		mac.Write(body)
		event.HMAC = hex.EncodeToString(mac.Sum(nil))
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	if err := l.checkRotationLocked(); err != nil {
		return err
	}

	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// VerifyLine checks the HMAC tag of one log line against the logger's
// key. Lines written unsigned verify only if the logger has no key.
func (l *Logger) VerifyLine(line []byte) bool {
	var event Event
	if err := json.Unmarshal(line, &event); err != nil {
		return false
	}

	l.mu.Lock()
	key := l.key
	l.mu.Unlock()

	if key == nil {
		return event.HMAC == ""
	}
	if event.HMAC == "" {
		return false
	}

	tag, err := hex.DecodeString(event.HMAC)
	if err != nil {
		return false
	}
	event.HMAC = ""
	body, err := json.Marshal(event)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hmac.Equal(tag, mac.Sum(nil))
}

// LogLogin records a login attempt.
func (l *Logger) LogLogin(username string, success bool, errMsg string) {
	l.logBestEffort(Event{
		EventType: "AUTH_LOGIN",
		Username:  username,
		Success:   success,
		Error:     errMsg,
	})
}

// LogPasswordChange records a password set or change.
func (l *Logger) LogPasswordChange(username string, success bool, errMsg string) {
	l.logBestEffort(Event{
		EventType: "AUTH_PASSWORD_CHANGE",
		Username:  username,
		Success:   success,
		Error:     errMsg,
	})
}

// LogAdmin records an administrative action by actor against target.
func (l *Logger) LogAdmin(actor, action, target string, success bool, errMsg string) {
	l.logBestEffort(Event{
		EventType: "ADMIN_" + action,
		Username:  actor,
		Success:   success,
		Error:     errMsg,
		Metadata:  map[string]string{"target": target},
	})
}

// LogLockout records the session entering the locked-out state.
func (l *Logger) LogLockout(attempts int) {
	l.logBestEffort(Event{
		EventType: "AUTH_LOCKOUT",
		Success:   false,
		Metadata:  map[string]string{"attempts": fmt.Sprintf("%d", attempts)},
	})
}

// logBestEffort writes the event, reporting failures to stderr rather
// than to the caller. Audit failures must not turn an otherwise valid
// login into an error, but they must not be silent either.
func (l *Logger) logBestEffort(event Event) {
	if err := l.Log(event); err != nil {
		fmt.Fprintf(os.Stderr, "AUDIT ERROR: failed to log %s: %v\n", event.EventType, err)
	}
}

// checkRotationLocked rotates the file when it exceeds maxSize.
func (l *Logger) checkRotationLocked() error {
	info, err := l.file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() < l.maxSize {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log for rotation: %w", err)
	}
	rotated := l.path + "." + time.Now().UTC().Format("20060102-150405")
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to reopen audit log: %w", err)
	}
	l.file = file
	return nil
}

// SetMaxSize overrides the rotation threshold.
func (l *Logger) SetMaxSize(size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if size > 0 {
		l.maxSize = size
	}
}

// IsEnabled reports whether events are being written.
func (l *Logger) IsEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
