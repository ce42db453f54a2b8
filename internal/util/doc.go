// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the BaatCheet client packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation for terminal listings
//   - PadWidth: right-pad to a display width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate a conversation title for a 40-column listing
//	title := util.TruncateWidth(conv.Title, 40)
//
//	// Write the credential file atomically
//	err := util.AtomicWriteFile(path, data, 0600)
package util
