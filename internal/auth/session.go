// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

// Role is the privilege level of an authenticated session.
type Role string

const (
	// RoleAdmin marks an administrator session.
	RoleAdmin Role = "admin"

	// RoleStandard marks a regular user session.
	RoleStandard Role = "standard"
)

// Session is the state of the current login, threaded explicitly
// through every call that needs it. The zero value is an
// unauthenticated session. There is at most one active session per
// engine; no tokens, no expiry.
type Session struct {
	Username      string
	Role          Role
	authenticated bool
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s Session) Authenticated() bool {
	return s.authenticated
}

// IsAdmin reports whether the session belongs to a logged-in
// administrator.
func (s Session) IsAdmin() bool {
	return s.authenticated && s.Role == RoleAdmin
}

// newSession builds an authenticated session for the given account.
func newSession(username string, admin bool) Session {
	role := RoleStandard
	if admin {
		role = RoleAdmin
	}
	return Session{Username: username, Role: role, authenticated: true}
}
