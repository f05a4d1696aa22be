// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hash provides the password digest used by the credential store.
//
// Digests are unsalted SHA-256 over the UTF-8 bytes of the password,
// rendered as lowercase hex. This format is load-bearing: existing
// users.json files carry these digests, so changing the scheme (salting,
// a KDF) would invalidate every stored credential. Identical passwords
// therefore produce identical digests across accounts; treat that as a
// known limitation of the store format, not something to fix here.
package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DigestLen is the length of a hex-encoded digest (256 bits as hex).
const DigestLen = 64

// Digest returns the lowercase hex SHA-256 digest of plaintext.
// Deterministic: the same plaintext always yields the same digest.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether plaintext hashes to expected.
// SECURITY: Uses a constant-time comparison. The digests themselves are
// not secret, but this avoids leaking prefix-match timing on the stored
// value at no cost.
func Verify(plaintext, expected string) bool {
	d := Digest(plaintext)
	if len(d) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(d), []byte(expected)) == 1
}
