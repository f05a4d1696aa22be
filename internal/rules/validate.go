// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import (
	"strings"

	"github.com/jeranaias/authvault/internal/util"
)

// ViolationCode identifies which rule a candidate password failed.
type ViolationCode int

const (
	// ViolationEmpty indicates an empty or blank candidate.
	ViolationEmpty ViolationCode = iota + 1

	// ViolationMismatch indicates the candidate and its confirmation differ.
	ViolationMismatch

	// ViolationTooShort indicates the candidate is shorter than MinLength.
	ViolationTooShort

	// ViolationNoUpper indicates a missing required uppercase letter.
	ViolationNoUpper

	// ViolationNoLower indicates a missing required lowercase letter.
	ViolationNoLower

	// ViolationNoDigit indicates a missing required digit.
	ViolationNoDigit

	// ViolationNoSpecial indicates a missing required special character.
	ViolationNoSpecial
)

// ViolationError reports a single failed rule. Checks run in a fixed
// order and the first failure wins, so the same bad password always
// produces the same code.
type ViolationError struct {
	Code    ViolationCode
	Message string
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	return e.Message
}

// Validate checks a candidate password and its re-entered confirmation
// against the rules. Returns nil on success or a *ViolationError for
// the first failing check. Pure function: no side effects.
//
// Order: empty, confirmation mismatch, length, upper, lower, digit,
// special.
func (r Rules) Validate(candidate, confirmation string) error {
	if strings.TrimSpace(candidate) == "" {
		return &ViolationError{
			Code:    ViolationEmpty,
			Message: "password cannot be empty",
		}
	}

	if candidate != confirmation {
		return &ViolationError{
			Code:    ViolationMismatch,
			Message: "passwords do not match",
		}
	}

	if r.MinLength > 0 && util.RuneLen(candidate) < r.MinLength {
		return &ViolationError{
			Code:    ViolationTooShort,
			Message: "password is too short",
		}
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range candidate {
		switch {
		case isUpperLetter(c):
			hasUpper = true
		case isLowerLetter(c):
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(SpecialSet, c):
			hasSpecial = true
		}
	}

	if r.RequireUpper && !hasUpper {
		return &ViolationError{
			Code:    ViolationNoUpper,
			Message: "password must contain at least one uppercase letter",
		}
	}

	if r.RequireLower && !hasLower {
		return &ViolationError{
			Code:    ViolationNoLower,
			Message: "password must contain at least one lowercase letter",
		}
	}

	if r.RequireDigit && !hasDigit {
		return &ViolationError{
			Code:    ViolationNoDigit,
			Message: "password must contain at least one digit",
		}
	}

	if r.RequireSpecial && !hasSpecial {
		return &ViolationError{
			Code:    ViolationNoSpecial,
			Message: "password must contain at least one special character",
		}
	}

	return nil
}

// Letter classes cover Latin A-Z/a-z and Cyrillic А-Я/а-я (plus Ё/ё,
// which sits outside the contiguous range). Other alphabets do not
// satisfy the class requirements.

func isUpperLetter(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'А' && c <= 'Я') || c == 'Ё'
}

func isLowerLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'а' && c <= 'я') || c == 'ё'
}
