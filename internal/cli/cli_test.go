// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"testing"

	"github.com/jeranaias/authvault/internal/auth"
	"github.com/jeranaias/authvault/internal/rules"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		input string
		cmd   string
		arg   string
	}{
		{"list", "list", ""},
		{"block alice", "block", "alice"},
		{"rules  bob ", "rules", "bob"},
		{"", "", ""},
	}
	for _, tc := range cases {
		cmd, arg := splitCommand(tc.input)
		if cmd != tc.cmd || arg != tc.arg {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)",
				tc.input, cmd, arg, tc.cmd, tc.arg)
		}
	}
}

func TestErrorMessageMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{auth.ErrUserNotFound, "no such user"},
		{auth.ErrAccountBlocked, "this account is blocked"},
		{auth.ErrUserExists, "a user with that name already exists"},
		{auth.ErrCannotBlockAdmin, "the administrator account cannot be blocked"},
		{auth.ErrNotAuthorized, "administrator rights required"},
		{fmt.Errorf("wrapped: %w", auth.ErrUserNotFound), "no such user"},
	}
	for _, tc := range cases {
		if got := errorMessage(tc.err); got != tc.want {
			t.Errorf("errorMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestErrorMessageKeepsAttemptCount(t *testing.T) {
	err := &auth.InvalidPasswordError{Remaining: 2}
	got := errorMessage(err)
	if got != err.Error() {
		t.Errorf("errorMessage = %q, want the attempt-aware message %q", got, err.Error())
	}
}

func TestErrorMessageShowsViolation(t *testing.T) {
	err := rules.Rules{MinLength: 8}.Validate("short", "short")
	if err == nil {
		t.Fatal("want a violation error")
	}
	violation, ok := err.(*rules.ViolationError)
	if !ok {
		t.Fatalf("err = %T, want *rules.ViolationError", err)
	}
	if got := errorMessage(err); got != violation.Message {
		t.Errorf("errorMessage = %q, want %q", got, violation.Message)
	}
}
