// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// Auth status values that mean "account exists but email is unverified".
const (
	StatusVerificationRequired = "verification_required"
	StatusNeedsVerification    = "needs_verification"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserDTO is the wire user.
type UserDTO struct {
	ID        string  `json:"id" validate:"required"`
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Avatar    *string `json:"avatar"`
	AvatarURL *string `json:"avatarUrl"`
	Role      *string `json:"role"`
	Tier      *string `json:"tier"`
}

// ToUser maps a user. Tier defaults to "free".
func ToUser(d UserDTO) (model.User, error) {
	if err := check("user", d); err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:        d.ID,
		Email:     d.Email,
		FirstName: optional(d.FirstName),
		LastName:  optional(d.LastName),
		Avatar:    firstString(d.Avatar, d.AvatarURL),
		Role:      optional(d.Role),
		Tier:      stringOr(d.Tier, DefaultTier),
	}, nil
}

// AuthResponseDTO is the payload of sign-in, sign-up and verify-email.
type AuthResponseDTO struct {
	Token                *string  `json:"token"`
	AccessToken          *string  `json:"accessToken"`
	User                 *UserDTO `json:"user"`
	Status               *string  `json:"status"`
	Email                *string  `json:"email"`
	RequiresVerification *bool    `json:"requiresVerification"`
}

// NeedsVerification reports whether the response is the
// "verification required" branch.
func (d AuthResponseDTO) NeedsVerification() bool {
	if boolOr(d.RequiresVerification, false) {
		return true
	}
	switch strings.ToLower(nonEmpty(d.Status)) {
	case StatusVerificationRequired, StatusNeedsVerification:
		return true
	}
	return false
}

// ToAuthResult maps the auth payload. requestEmail is used when a
// verification-required response omits the email.
func ToAuthResult(d AuthResponseDTO, requestEmail string) (model.AuthResult, error) {
	if d.NeedsVerification() {
		return model.AuthNeedsVerification{Email: stringOr(d.Email, requestEmail)}, nil
	}

	token := firstString(d.Token, d.AccessToken)
	if token == nil {
		return nil, mappingErr("auth", "token is missing")
	}
	if d.User == nil {
		return nil, mappingErr("auth", "user is missing")
	}
	user, err := ToUser(*d.User)
	if err != nil {
		return nil, err
	}
	return model.AuthSuccess{Token: *token, UserID: user.ID, User: user}, nil
}

// TokenDTO is the payload of token refresh.
type TokenDTO struct {
	Token       *string `json:"token"`
	AccessToken *string `json:"accessToken"`
}

// ToToken returns the refreshed token.
func ToToken(d TokenDTO) (string, error) {
	token := firstString(d.Token, d.AccessToken)
	if token == nil {
		return "", mappingErr("token", "token is missing")
	}
	return *token, nil
}

// MeDTO accepts both {user: {...}} and a bare user object.
type MeDTO struct {
	UserDTO
	User *UserDTO `json:"user"`
}

// ToCurrentUser maps the /auth/me payload.
func ToCurrentUser(d MeDTO) (model.User, error) {
	if d.User != nil {
		return ToUser(*d.User)
	}
	return ToUser(d.UserDTO)
}
