// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the authentication engine and the
// administration service on top of the credential store.
//
// The engine owns the login state machine: attempt counting, session
// lockout, the first-run administrator bootstrap, and the first-login
// password setup flow for accounts created without a password. The
// failed-attempt counter is scoped to the engine instance, counts
// consecutive failures regardless of which username was tried, resets
// on any success, and is not persisted. Reaching the limit is terminal:
// the engine refuses everything afterwards and the caller ends the
// session.
package auth

import (
	"sync"

	"github.com/jeranaias/authvault/internal/audit"
	"github.com/jeranaias/authvault/internal/hash"
	"github.com/jeranaias/authvault/internal/rules"
	"github.com/jeranaias/authvault/internal/store"
)

// DefaultMaxAttempts is the number of consecutive failed logins before
// the session locks out.
const DefaultMaxAttempts = 3

// SetupFunc collects a new password for username, typically by
// prompting. desc is the human-readable policy summary (may be empty).
// ok=false means the operator declined.
type SetupFunc func(username, desc string) (password, confirmation string, ok bool)

// LoginOutcome is the result of a successful AttemptLogin call.
type LoginOutcome struct {
	// NeedsSetup is true when the account exists but has no password
	// yet; the caller must run SetInitialPassword before the user can
	// authenticate. Session is zero in that case.
	NeedsSetup bool

	// Session is the authenticated session when NeedsSetup is false.
	Session Session
}

// Engine orchestrates login attempts against the credential store.
type Engine struct {
	store *store.File
	audit *audit.Logger

	mu          sync.Mutex
	maxAttempts int
	attempts    int
	lockedOut   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithAudit sets the audit logger for authentication events.
func WithAudit(log *audit.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.audit = log
		}
	}
}

// WithMaxAttempts overrides the lockout threshold.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// NewEngine creates an engine over the given store.
func NewEngine(st *store.File, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		audit:       audit.Disabled(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnsureAdminExists runs the one-time bootstrap: if the well-known
// administrator is absent or has no password, setup is invoked to
// collect one before anything else is allowed. Declining is fatal
// (ErrStartupAborted); the caller must terminate, not retry.
//
// The bootstrap password itself is unconstrained, but the created
// account carries the conservative policy so the next rotation is.
func (e *Engine) EnsureAdminExists(setup SetupFunc) error {
	return e.store.Mutate(func(snap *store.Snapshot) error {
		admin := snap.Get(store.AdminUsername)
		if admin != nil && admin.HasPassword() {
			return nil
		}

		// First run sets the password without restrictions.
		free := rules.Rules{}
		for {
			password, confirmation, ok := setup(store.AdminUsername, free.Describe())
			if !ok {
				e.audit.LogLogin(store.AdminUsername, false, "bootstrap declined")
				return ErrStartupAborted
			}
			if err := free.Validate(password, confirmation); err != nil {
				// Recoverable: prompt again.
				continue
			}
			snap.Put(&store.Account{
				Username: store.AdminUsername,
				Digest:   hash.Digest(password),
				Admin:    true,
				Rules:    rules.Conservative(),
			})
			e.audit.LogPasswordChange(store.AdminUsername, true, "")
			return nil
		}
	})
}

// AttemptLogin runs one login attempt. On success the outcome carries
// either an authenticated session or the needs-password-setup signal.
// Failures are ErrUserNotFound, ErrAccountBlocked, an
// *InvalidPasswordError, or the terminal ErrTooManyAttempts.
//
// Unknown usernames and wrong passwords both count toward lockout;
// blocked accounts and accounts awaiting setup do not.
func (e *Engine) AttemptLogin(username, password string) (LoginOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lockedOut {
		return LoginOutcome{}, ErrTooManyAttempts
	}

	snap := e.store.Load()
	account := snap.Get(username)
	if account == nil {
		err := e.recordFailureLocked(username, "user not found")
		return LoginOutcome{}, err
	}

	if account.Blocked {
		e.audit.LogLogin(username, false, "account blocked")
		return LoginOutcome{}, ErrAccountBlocked
	}

	if !account.HasPassword() {
		e.audit.LogLogin(username, false, "password setup required")
		return LoginOutcome{NeedsSetup: true}, nil
	}

	if !hash.Verify(password, account.Digest) {
		err := e.recordFailureLocked(username, "invalid password")
		return LoginOutcome{}, err
	}

	e.attempts = 0
	e.audit.LogLogin(username, true, "")
	return LoginOutcome{Session: newSession(username, account.Admin)}, nil
}

// recordFailureLocked bumps the attempt counter and returns the error
// for this failure: ErrTooManyAttempts at the limit, otherwise either
// ErrUserNotFound or an *InvalidPasswordError depending on reason.
func (e *Engine) recordFailureLocked(username, reason string) error {
	e.attempts++
	e.audit.LogLogin(username, false, reason)

	if e.attempts >= e.maxAttempts {
		e.lockedOut = true
		e.audit.LogLockout(e.attempts)
		return ErrTooManyAttempts
	}
	if reason == "user not found" {
		return ErrUserNotFound
	}
	return &InvalidPasswordError{Remaining: e.maxAttempts - e.attempts}
}

// SetInitialPassword establishes the first password for an account in
// the awaiting-setup state and returns the resulting authenticated
// session. The candidate is validated against the account's own policy.
func (e *Engine) SetInitialPassword(username, candidate, confirmation string) (Session, error) {
	var session Session
	err := e.store.Mutate(func(snap *store.Snapshot) error {
		account := snap.Get(username)
		if account == nil {
			return ErrUserNotFound
		}
		if account.Blocked {
			return ErrAccountBlocked
		}
		if err := account.Rules.Validate(candidate, confirmation); err != nil {
			e.audit.LogPasswordChange(username, false, err.Error())
			return err
		}
		account.Digest = hash.Digest(candidate)
		session = newSession(username, account.Admin)
		e.audit.LogPasswordChange(username, true, "")
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	e.attempts = 0
	e.mu.Unlock()
	return session, nil
}

// Register creates an account with an immediately-set password. The
// account starts with no policy attached; the password only has to be
// non-empty and match its confirmation.
func (e *Engine) Register(username, password, confirmation string, admin bool) error {
	if isBlank(username) {
		return ErrEmptyUsername
	}
	return e.store.Mutate(func(snap *store.Snapshot) error {
		if snap.Has(username) {
			return ErrUserExists
		}
		if err := (rules.Rules{}).Validate(password, confirmation); err != nil {
			return err
		}
		snap.Put(&store.Account{
			Username: username,
			Digest:   hash.Digest(password),
			Admin:    admin,
		})
		e.audit.LogAdmin(username, "REGISTER", username, true, "")
		return nil
	})
}

// ChangePassword rotates the password of the session's own account.
// The old password is re-verified first; the new one is validated
// against the account's policy. Available to admin and standard
// sessions alike.
func (e *Engine) ChangePassword(s Session, oldPassword, newPassword, confirmation string) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	return e.store.Mutate(func(snap *store.Snapshot) error {
		account := snap.Get(s.Username)
		if account == nil {
			return ErrUserNotFound
		}
		// Accounts still awaiting setup have nothing to re-verify.
		if account.HasPassword() && !hash.Verify(oldPassword, account.Digest) {
			e.audit.LogPasswordChange(s.Username, false, "old password mismatch")
			return ErrInvalidPassword
		}
		if err := account.Rules.Validate(newPassword, confirmation); err != nil {
			e.audit.LogPasswordChange(s.Username, false, err.Error())
			return err
		}
		account.Digest = hash.Digest(newPassword)
		e.audit.LogPasswordChange(s.Username, true, "")
		return nil
	})
}

// Policy returns the password policy attached to an account, for
// display before a password is chosen.
func (e *Engine) Policy(username string) (rules.Rules, error) {
	account := e.store.Load().Get(username)
	if account == nil {
		return rules.Rules{}, ErrUserNotFound
	}
	return account.Rules, nil
}

// LockedOut reports whether the engine has reached the attempt limit.
func (e *Engine) LockedOut() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lockedOut
}

// Attempts returns the current consecutive failure count.
func (e *Engine) Attempts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts
}
