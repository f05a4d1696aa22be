// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for authvault.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - RuneLen: Character count for UTF-8 strings
//
// # Usage
//
//	// Write the credential store atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Count password characters, not bytes
//	n := util.RuneLen(candidate)
package util
