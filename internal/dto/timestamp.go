// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTime parses a backend timestamp. Absent, empty or unparseable values
// yield nil; optional timestamps never fail a mapping.
func ParseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// firstTime returns the first candidate that parses.
func firstTime(candidates ...*string) *time.Time {
	for _, c := range candidates {
		if t := ParseTime(c); t != nil {
			return t
		}
	}
	return nil
}
