// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound indicates the username is absent from the store.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountBlocked indicates the account exists but is blocked.
	ErrAccountBlocked = errors.New("account is blocked")

	// ErrInvalidPassword indicates a wrong password. Returned wrapped in
	// an *InvalidPasswordError carrying the remaining attempt count.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrTooManyAttempts is terminal for the engine instance: once the
	// attempt limit is reached, every further login is refused with it,
	// correct credentials included. The caller is expected to end the
	// session.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrStartupAborted indicates the operator declined to set the
	// administrator password at first run. Fatal: the caller must not
	// proceed.
	ErrStartupAborted = errors.New("administrator password setup aborted")

	// ErrNotAuthorized indicates the caller is not an authenticated
	// administrator.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotAuthenticated indicates an operation that needs a logged-in
	// caller was invoked without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrEmptyUsername indicates a blank or whitespace-only username.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrCannotBlockAdmin indicates an attempt to block the well-known
	// administrator account.
	ErrCannotBlockAdmin = errors.New("the administrator account cannot be blocked")
)

// InvalidPasswordError is a wrong-password failure plus the number of
// attempts left before the session locks out. errors.Is matches it
// against ErrInvalidPassword.
type InvalidPasswordError struct {
	Remaining int
}

// Error implements the error interface.
func (e *InvalidPasswordError) Error() string {
	return fmt.Sprintf("invalid password (%d attempts remaining)", e.Remaining)
}

// Is reports a match against ErrInvalidPassword.
func (e *InvalidPasswordError) Is(target error) bool {
	return target == ErrInvalidPassword
}
