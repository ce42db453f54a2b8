// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import "strings"

// Defaults applied when the backend omits a field.
const (
	DefaultTier            = "free"
	DefaultModeIcon        = "sparkles"
	DefaultMessagesLimit   = 50
	DefaultImagesLimit     = 5
	DefaultFileUploadLimit = 10
	DefaultIntent          = "general"
	DefaultComplexity      = "simple"
	DefaultFactCategory    = "general"
)

func stringOr(s *string, def string) string {
	if v := nonEmpty(s); v != "" {
		return v
	}
	return def
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func intOr(i *int, def int) int {
	if i == nil {
		return def
	}
	return *i
}

// optional drops blank strings.
func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if s := optional(v); s != nil {
			return s
		}
	}
	return nil
}
