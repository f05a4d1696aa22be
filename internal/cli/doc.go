// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the interactive authvault console.
//
// The console runs in two phases. The login phase serves the login,
// register, and quit commands and enforces the engine's attempt limit;
// once the limit is reached the process exits and only a restart
// grants fresh attempts. The menu phase serves the authenticated
// session: standard users can rotate their own password, and
// administrators additionally manage accounts and password policies.
//
// Output styling uses lipgloss and degrades to plain text on non-TTY
// output or when NO_COLOR is set.
package cli
