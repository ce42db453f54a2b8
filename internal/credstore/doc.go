// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credstore persists the session credentials: the bearer token,
// the cached user snapshot and the email awaiting verification.
//
// Three backends implement Store:
//
//   - Memory: process-local, for tests and ephemeral sessions
//   - File: a single AES-256-GCM sealed file, key from a passphrase (PBKDF2)
//     or a generated key file
//   - SQLite: a key/value table, values optionally sealed with the same cipher
//
// Token presence in the store is the only signal that a session exists.
package credstore
