// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rules provides per-account password policy configuration and
// validation for the credential store.
//
// A Rules value describes what the account's next password must look
// like. The zero value imposes no constraints: enforcement is purely
// opt-in, and every flag defaults to off.
//
// Earlier releases stored the policy as a bare boolean ("has rules").
// LegacyRules maps that form onto the structured one; the store calls
// it at load time so the rest of the program only ever sees Rules.
package rules

import (
	"fmt"
	"strings"
)

// Rules defines password complexity requirements for one account.
type Rules struct {
	// MinLength is the minimum required password length in characters.
	// 0 means no minimum.
	MinLength int `json:"min_length"`

	// RequireUpper requires at least one uppercase letter (Latin or Cyrillic).
	RequireUpper bool `json:"require_upper"`

	// RequireLower requires at least one lowercase letter (Latin or Cyrillic).
	RequireLower bool `json:"require_lower"`

	// RequireDigit requires at least one digit 0-9.
	RequireDigit bool `json:"require_digit"`

	// RequireSpecial requires at least one character from SpecialSet.
	RequireSpecial bool `json:"require_special"`
}

// SpecialSet is the fixed set of characters that satisfy RequireSpecial.
const SpecialSet = `!@#$%^&*(),.?":{}|<>`

// legacyMinLength is the minimum length implied by the old boolean
// "has rules" form.
const legacyMinLength = 6

// Zero reports whether the rules impose no constraints at all.
func (r Rules) Zero() bool {
	return r.MinLength == 0 &&
		!r.RequireUpper && !r.RequireLower &&
		!r.RequireDigit && !r.RequireSpecial
}

// LegacyRules converts the historical boolean policy form to the
// structured form: true meant "minimum six characters", false meant
// "no constraints". Character-class flags did not exist yet.
func LegacyRules(flag bool) Rules {
	if !flag {
		return Rules{}
	}
	return Rules{MinLength: legacyMinLength}
}

// Conservative returns the strict default applied to the bootstrap
// administrator: minimum eight characters, all four classes required.
func Conservative() Rules {
	return Rules{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Describe renders a short human-readable summary of the requirements,
// suitable for a password prompt. Returns "" for zero rules.
func (r Rules) Describe() string {
	if r.Zero() {
		return ""
	}
	var parts []string
	if r.MinLength > 0 {
		parts = append(parts, fmt.Sprintf("at least %d characters", r.MinLength))
	}
	if r.RequireUpper {
		parts = append(parts, "an uppercase letter")
	}
	if r.RequireLower {
		parts = append(parts, "a lowercase letter")
	}
	if r.RequireDigit {
		parts = append(parts, "a digit")
	}
	if r.RequireSpecial {
		parts = append(parts, "a special character")
	}
	return "requires " + strings.Join(parts, ", ")
}
