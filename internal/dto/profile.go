// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import "github.com/baatcheet/baatcheet-cli/internal/model"

// ProfileDTO is the user profile: the user fields, flat or nested under
// "user", plus profile-only fields.
type ProfileDTO struct {
	UserDTO
	User               *UserDTO  `json:"user"`
	Bio                *string   `json:"bio"`
	Occupation         *string   `json:"occupation"`
	Interests          []string  `json:"interests"`
	CustomInstructions *string   `json:"customInstructions"`
	Facts              []FactDTO `json:"facts"`
}

// ToProfile maps a profile.
func ToProfile(d ProfileDTO) (model.Profile, error) {
	src := d.UserDTO
	if d.User != nil {
		src = *d.User
	}
	user, err := ToUser(src)
	if err != nil {
		return model.Profile{}, err
	}
	facts, err := ToFacts(d.Facts)
	if err != nil {
		return model.Profile{}, err
	}
	interests := d.Interests
	if interests == nil {
		interests = []string{}
	}
	return model.Profile{
		User:               user,
		Bio:                optional(d.Bio),
		Occupation:         optional(d.Occupation),
		Interests:          interests,
		CustomInstructions: optional(d.CustomInstructions),
		Facts:              facts,
	}, nil
}

// ProfileUpdateRequest is the PATCH body for the profile.
type ProfileUpdateRequest struct {
	FirstName          *string  `json:"firstName,omitempty"`
	LastName           *string  `json:"lastName,omitempty"`
	Bio                *string  `json:"bio,omitempty"`
	Occupation         *string  `json:"occupation,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	CustomInstructions *string  `json:"customInstructions,omitempty"`
}

// FromProfileUpdate builds the PATCH body.
func FromProfileUpdate(u model.ProfileUpdate) ProfileUpdateRequest {
	return ProfileUpdateRequest(u)
}

// FactDTO is something the user taught the assistant.
type FactDTO struct {
	ID        string  `json:"id" validate:"required"`
	Fact      *string `json:"fact"`
	Content   *string `json:"content"`
	Category  *string `json:"category"`
	CreatedAt *string `json:"createdAt"`
}

// ToFact maps a fact.
func ToFact(d FactDTO) (model.ProfileFact, error) {
	if err := check("fact", d); err != nil {
		return model.ProfileFact{}, err
	}
	return model.ProfileFact{
		ID:        d.ID,
		Fact:      stringOr(firstString(d.Fact, d.Content), ""),
		Category:  stringOr(d.Category, DefaultFactCategory),
		CreatedAt: ParseTime(d.CreatedAt),
	}, nil
}

// ToFacts maps a fact list, never returning nil.
func ToFacts(ds []FactDTO) ([]model.ProfileFact, error) {
	out := make([]model.ProfileFact, 0, len(ds))
	for _, d := range ds {
		f, err := ToFact(d)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

type TeachRequest struct {
	Fact     string `json:"fact"`
	Category string `json:"category,omitempty"`
}

// AvatarDTO is the upload-avatar response.
type AvatarDTO struct {
	Avatar    *string `json:"avatar"`
	AvatarURL *string `json:"avatarUrl"`
	URL       *string `json:"url"`
}

// ToAvatarURL returns the new avatar URL.
func ToAvatarURL(d AvatarDTO) (string, error) {
	u := firstString(d.AvatarURL, d.Avatar, d.URL)
	if u == nil {
		return "", mappingErr("avatar", "url is missing")
	}
	return *u, nil
}

type DeleteAccountRequest struct {
	Password string `json:"password,omitempty"`
}
