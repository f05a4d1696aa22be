// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strings"

	"github.com/jeranaias/authvault/internal/audit"
	"github.com/jeranaias/authvault/internal/rules"
	"github.com/jeranaias/authvault/internal/store"
)

// Admin exposes the privileged account-management operations. Every
// call re-checks the session role, so holding an Admin value without
// an administrator session grants nothing.
type Admin struct {
	store *store.File
	audit *audit.Logger
}

// NewAdmin creates the administration service over the given store.
func NewAdmin(st *store.File, log *audit.Logger) *Admin {
	if log == nil {
		log = audit.Disabled()
	}
	return &Admin{store: st, audit: log}
}

// UserInfo is a read-only view of one account for listings. The
// password digest is deliberately absent.
type UserInfo struct {
	Username string
	Admin    bool
	Blocked  bool
	HasPass  bool
	Rules    rules.Rules
}

func requireAdmin(s Session) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if !s.IsAdmin() {
		return ErrNotAuthorized
	}
	return nil
}

func isBlank(username string) bool {
	return strings.TrimSpace(username) == ""
}

// AddUser creates a new account with no password. The user sets one on
// first login, constrained by whatever policy is attached by then.
func (a *Admin) AddUser(s Session, username string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	if isBlank(username) {
		return ErrEmptyUsername
	}
	err := a.store.Mutate(func(snap *store.Snapshot) error {
		if snap.Has(username) {
			return ErrUserExists
		}
		snap.Put(&store.Account{Username: username})
		return nil
	})
	a.audit.LogAdmin(s.Username, "ADD_USER", username, err == nil, errMsg(err))
	return err
}

// Block disables logins for an account. The well-known administrator
// cannot be blocked; everyone else can, including other admins.
func (a *Admin) Block(s Session, username string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	err := a.setBlocked(username, true)
	a.audit.LogAdmin(s.Username, "BLOCK", username, err == nil, errMsg(err))
	return err
}

// Unblock re-enables logins for an account.
func (a *Admin) Unblock(s Session, username string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	err := a.setBlocked(username, false)
	a.audit.LogAdmin(s.Username, "UNBLOCK", username, err == nil, errMsg(err))
	return err
}

func (a *Admin) setBlocked(username string, blocked bool) error {
	return a.store.Mutate(func(snap *store.Snapshot) error {
		account := snap.Get(username)
		if account == nil {
			return ErrUserNotFound
		}
		if blocked && username == store.AdminUsername {
			return ErrCannotBlockAdmin
		}
		account.Blocked = blocked
		return nil
	})
}

// Promote grants administrator rights to an existing account.
func (a *Admin) Promote(s Session, username string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	err := a.store.Mutate(func(snap *store.Snapshot) error {
		account := snap.Get(username)
		if account == nil {
			return ErrUserNotFound
		}
		account.Admin = true
		return nil
	})
	a.audit.LogAdmin(s.Username, "PROMOTE", username, err == nil, errMsg(err))
	return err
}

// SetRules replaces the password policy attached to an account. The
// new policy applies from the next password change; the current
// password is never re-checked against it.
func (a *Admin) SetRules(s Session, username string, r rules.Rules) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	err := a.store.Mutate(func(snap *store.Snapshot) error {
		account := snap.Get(username)
		if account == nil {
			return ErrUserNotFound
		}
		account.Rules = r
		return nil
	})
	a.audit.LogAdmin(s.Username, "SET_RULES", username, err == nil, errMsg(err))
	return err
}

// ListUsers returns every account, sorted by username.
func (a *Admin) ListUsers(s Session) ([]UserInfo, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	snap := a.store.Load()
	users := make([]UserInfo, 0, snap.Len())
	for _, name := range snap.Usernames() {
		account := snap.Get(name)
		users = append(users, UserInfo{
			Username: account.Username,
			Admin:    account.Admin,
			Blocked:  account.Blocked,
			HasPass:  account.HasPassword(),
			Rules:    account.Rules,
		})
	}
	return users, nil
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
