// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tier values reported by the backend.
const (
	TierFree  = "free"
	TierPro   = "pro"
	TierAdmin = "admin"
)

// User is an authenticated BaatCheet account.
//
// The JSON tags are used only for the cached-user snapshot kept in the
// credential store; wire decoding goes through package dto.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Role      *string `json:"role,omitempty"`
	Tier      string  `json:"tier"`
}

// DisplayName returns "First Last" when either name is known, otherwise the
// local part of the email address.
func (u User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*u.FirstName))
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*u.LastName))
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// Initials returns up to two upper-cased initials for avatar placeholders.
func (u User) Initials() string {
	var b strings.Builder
	for _, name := range []*string{u.FirstName, u.LastName} {
		if name == nil {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(*name)); r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	if r, _ := utf8.DecodeRuneInString(u.Email); r != utf8.RuneError {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// IsPro reports whether the user is on a paid tier.
func (u User) IsPro() bool {
	return u.Tier == TierPro || u.Tier == TierAdmin
}
