// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for the console.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let the console loop decide how to display errors
//
// ERROR HANDLING: Errors must not be silently ignored

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/authvault/internal/auth"
	"github.com/jeranaias/authvault/internal/rules"
)

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitSecurityError indicates a security policy violation,
	// the attempt-limit lockout included
	ExitSecurityError = 6
)

// errorMessage maps engine and store errors to operator-facing text.
func errorMessage(err error) string {
	var invalid *auth.InvalidPasswordError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	var violation *rules.ViolationError
	if errors.As(err, &violation) {
		return violation.Message
	}

	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return "no such user"
	case errors.Is(err, auth.ErrAccountBlocked):
		return "this account is blocked"
	case errors.Is(err, auth.ErrUserExists):
		return "a user with that name already exists"
	case errors.Is(err, auth.ErrEmptyUsername):
		return "username cannot be empty"
	case errors.Is(err, auth.ErrCannotBlockAdmin):
		return "the administrator account cannot be blocked"
	case errors.Is(err, auth.ErrNotAuthorized):
		return "administrator rights required"
	case errors.Is(err, auth.ErrInvalidPassword):
		return "invalid password"
	}
	return err.Error()
}

// printError writes a styled error line to stderr.
func printError(err error) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+errorMessage(err))
}

// printSuccess writes a styled confirmation line.
func printSuccess(msg string) {
	fmt.Println(SuccessStyle.Render("OK ") + ValueStyle.Render(msg))
}
