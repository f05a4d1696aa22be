// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import (
	"errors"
	"testing"
)

func violationCode(t *testing.T, err error) ViolationCode {
	t.Helper()
	var verr *ViolationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ViolationError, got %v", err)
	}
	return verr.Code
}

func TestValidate_ZeroRulesAcceptAnything(t *testing.T) {
	r := Rules{}
	for _, p := range []string{"a", "x", "пароль", "12345", "!"} {
		if err := r.Validate(p, p); err != nil {
			t.Errorf("zero rules rejected %q: %v", p, err)
		}
	}
}

func TestValidate_EmptyAndBlank(t *testing.T) {
	r := Rules{}
	if code := violationCode(t, r.Validate("", "")); code != ViolationEmpty {
		t.Errorf("empty password: code = %d, want ViolationEmpty", code)
	}
	if code := violationCode(t, r.Validate("   ", "   ")); code != ViolationEmpty {
		t.Errorf("blank password: code = %d, want ViolationEmpty", code)
	}
}

func TestValidate_ConfirmationMismatch(t *testing.T) {
	r := Rules{}
	if code := violationCode(t, r.Validate("secret", "secrets")); code != ViolationMismatch {
		t.Errorf("code = %d, want ViolationMismatch", code)
	}
}

func TestValidate_Order_FirstFailureWins(t *testing.T) {
	// A password that is empty fails ViolationEmpty even though every
	// other rule would also fail.
	r := Rules{MinLength: 8, RequireUpper: true, RequireDigit: true}
	if code := violationCode(t, r.Validate("", "")); code != ViolationEmpty {
		t.Errorf("code = %d, want ViolationEmpty first", code)
	}

	// Mismatch is reported before length.
	if code := violationCode(t, r.Validate("abc", "abd")); code != ViolationMismatch {
		t.Errorf("code = %d, want ViolationMismatch before ViolationTooShort", code)
	}

	// Length is reported before character classes.
	if code := violationCode(t, r.Validate("abc", "abc")); code != ViolationTooShort {
		t.Errorf("code = %d, want ViolationTooShort before ViolationNoUpper", code)
	}
}

func TestValidate_MinLength(t *testing.T) {
	r := Rules{MinLength: 6}
	if code := violationCode(t, r.Validate("short", "short")); code != ViolationTooShort {
		t.Errorf("code = %d, want ViolationTooShort", code)
	}
	if err := r.Validate("longer", "longer"); err != nil {
		t.Errorf("six-character password rejected: %v", err)
	}
	// Length counts characters, not bytes.
	if err := r.Validate("пароль", "пароль"); err != nil {
		t.Errorf("six-rune cyrillic password rejected: %v", err)
	}
}

func TestValidate_CharacterClasses(t *testing.T) {
	tests := []struct {
		name     string
		rules    Rules
		password string
		want     ViolationCode // 0 means valid
	}{
		{"missing upper", Rules{RequireUpper: true}, "lower1!", ViolationNoUpper},
		{"latin upper ok", Rules{RequireUpper: true}, "Lower", 0},
		{"cyrillic upper ok", Rules{RequireUpper: true}, "Пароль", 0},
		{"missing lower", Rules{RequireLower: true}, "UPPER1", ViolationNoLower},
		{"cyrillic lower ok", Rules{RequireLower: true}, "пАРОЛЬ", 0},
		{"missing digit", Rules{RequireDigit: true}, "NoDigits", ViolationNoDigit},
		{"digit ok", Rules{RequireDigit: true}, "has1digit", 0},
		{"missing special", Rules{RequireSpecial: true}, "NoSpecial1", ViolationNoSpecial},
		{"special ok", Rules{RequireSpecial: true}, "with@sign", 0},
		{"all classes ok", Conservative(), "Valid@Pass123", 0},
		{"all classes cyrillic", Conservative(), "Пароль#123", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate(tt.password, tt.password)
			if tt.want == 0 {
				if err != nil {
					t.Errorf("Validate(%q) = %v, want nil", tt.password, err)
				}
				return
			}
			if code := violationCode(t, err); code != tt.want {
				t.Errorf("Validate(%q) code = %d, want %d", tt.password, code, tt.want)
			}
		})
	}
}

func TestValidate_SpecialSetIsFixed(t *testing.T) {
	r := Rules{RequireSpecial: true}
	// Characters outside the fixed set do not count as special.
	if code := violationCode(t, r.Validate("pass-word_", "pass-word_")); code != ViolationNoSpecial {
		t.Errorf("hyphen/underscore counted as special, code = %d", code)
	}
	for _, c := range SpecialSet {
		p := "pass" + string(c)
		if err := r.Validate(p, p); err != nil {
			t.Errorf("special char %q rejected: %v", c, err)
		}
	}
}

func TestLegacyRules(t *testing.T) {
	got := LegacyRules(true)
	want := Rules{MinLength: 6}
	if got != want {
		t.Errorf("LegacyRules(true) = %+v, want %+v", got, want)
	}
	if got := LegacyRules(false); !got.Zero() {
		t.Errorf("LegacyRules(false) = %+v, want zero rules", got)
	}
}

func TestZero(t *testing.T) {
	if !(Rules{}).Zero() {
		t.Error("zero value not reported as Zero")
	}
	if (Rules{MinLength: 1}).Zero() {
		t.Error("MinLength=1 reported as Zero")
	}
	if (Rules{RequireSpecial: true}).Zero() {
		t.Error("RequireSpecial reported as Zero")
	}
}

func TestDescribe(t *testing.T) {
	if got := (Rules{}).Describe(); got != "" {
		t.Errorf("Describe() of zero rules = %q, want empty", got)
	}
	got := Conservative().Describe()
	if got == "" {
		t.Error("Describe() of conservative rules is empty")
	}
}
