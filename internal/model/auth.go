// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// AuthResult is the outcome of a sign-in, sign-up or verification call.
// It is a closed sum type: AuthSuccess, AuthNeedsVerification or AuthFailure.
// Callers must handle all three before treating authentication as complete.
type AuthResult interface {
	isAuthResult()
}

// AuthSuccess carries the issued bearer token and the signed-in user.
type AuthSuccess struct {
	Token  string
	UserID string
	User   User
}

// AuthNeedsVerification means the account exists but its email must be
// verified before a token is issued.
type AuthNeedsVerification struct {
	Email string
}

// AuthFailure wraps the domain error that ended the attempt.
type AuthFailure struct {
	Err error
}

func (AuthSuccess) isAuthResult()           {}
func (AuthNeedsVerification) isAuthResult() {}
func (AuthFailure) isAuthResult()           {}

// Error returns the failure message.
func (f AuthFailure) Error() string {
	if f.Err == nil {
		return "authentication failed"
	}
	return f.Err.Error()
}

// SignUpInput holds the fields for account creation.
type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}
