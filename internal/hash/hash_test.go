// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hash

import "testing"

func TestDigest_Deterministic(t *testing.T) {
	if Digest("secret") != Digest("secret") {
		t.Error("repeated digests of the same password differ")
	}
	if Digest("secret") == Digest("Secret") {
		t.Error("different passwords produced the same digest")
	}
}

func TestDigest_KnownValue(t *testing.T) {
	// sha256("password") — matches digests written by earlier releases.
	const want = "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if got := Digest("password"); got != want {
		t.Errorf("Digest(password) = %s, want %s", got, want)
	}
}

func TestDigest_Length(t *testing.T) {
	for _, p := range []string{"", "a", "пароль", "a long passphrase with spaces"} {
		if got := len(Digest(p)); got != DigestLen {
			t.Errorf("len(Digest(%q)) = %d, want %d", p, got, DigestLen)
		}
	}
}

func TestVerify(t *testing.T) {
	d := Digest("correct horse")
	if !Verify("correct horse", d) {
		t.Error("Verify rejected the correct password")
	}
	if Verify("wrong horse", d) {
		t.Error("Verify accepted a wrong password")
	}
	if Verify("correct horse", "") {
		t.Error("Verify accepted an empty stored digest")
	}
	if Verify("", d) {
		t.Error("Verify accepted an empty password against a real digest")
	}
}
