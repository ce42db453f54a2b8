// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Profile is the user's editable profile and the facts they taught the assistant.
type Profile struct {
	User               User
	Bio                *string
	Occupation         *string
	Interests          []string
	CustomInstructions *string
	Facts              []ProfileFact
}

// ProfileFact is a single "teach the AI about me" entry.
type ProfileFact struct {
	ID        string
	Fact      string
	Category  string
	CreatedAt *time.Time
}

// ProfileUpdate is a partial profile update; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName          *string  `json:"firstName,omitempty"`
	LastName           *string  `json:"lastName,omitempty"`
	Bio                *string  `json:"bio,omitempty"`
	Occupation         *string  `json:"occupation,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	CustomInstructions *string  `json:"customInstructions,omitempty"`
}
