// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package usecase

import (
	"context"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
)

// AuthService is the auth façade as seen by AuthUseCase.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (model.AuthResult, error)
	SignUp(ctx context.Context, in model.SignUpInput) (model.AuthResult, error)
	VerifyEmail(ctx context.Context, email, code string) (model.AuthResult, error)
	ResendVerification(ctx context.Context, email string) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type signInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
}

type codeInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,numeric"`
}

type emailInput struct {
	Email string `validate:"required,email"`
}

// AuthUseCase validates credentials before they reach the auth façade.
// SignIn, SignUp and Verify never return an error: failures arrive as
// model.AuthFailure.
type AuthUseCase struct {
	auth AuthService
}

// NewAuthUseCase creates an AuthUseCase.
func NewAuthUseCase(auth AuthService) *AuthUseCase {
	return &AuthUseCase{auth: auth}
}

// normalizeEmail trims, normalizes and lowercases an address.
func normalizeEmail(email string) string {
	return strings.ToLower(normalize(email))
}

// SignIn validates and signs in.
func (u *AuthUseCase) SignIn(ctx context.Context, email, password string) model.AuthResult {
	email = normalizeEmail(email)
	if field, msg, bad := invalid(signInInput{Email: email, Password: password}); bad {
		return model.AuthFailure{Err: authInputError(field, msg)}
	}
	return fold(u.auth.SignIn(ctx, email, password))
}

// SignUp validates and creates an account.
func (u *AuthUseCase) SignUp(ctx context.Context, in model.SignUpInput) model.AuthResult {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = normalize(in.FirstName)
	in.LastName = normalize(in.LastName)
	if field, msg, bad := invalid(signUpInput{Email: in.Email, Password: in.Password}); bad {
		return model.AuthFailure{Err: authInputError(field, msg)}
	}
	return fold(u.auth.SignUp(ctx, in))
}

// Verify validates the 6-digit code and submits it.
func (u *AuthUseCase) Verify(ctx context.Context, email, code string) model.AuthResult {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if field, msg, bad := invalid(codeInput{Email: email, Code: code}); bad {
		return model.AuthFailure{Err: authInputError(field, msg)}
	}
	return fold(u.auth.VerifyEmail(ctx, email, code))
}

// Resend asks for a new verification code.
func (u *AuthUseCase) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if field, msg, bad := invalid(emailInput{Email: email}); bad {
		return authInputError(field, msg)
	}
	return u.auth.ResendVerification(ctx, email)
}

// Logout ends the session. Local state is always cleared.
func (u *AuthUseCase) Logout(ctx context.Context) error {
	return u.auth.Logout(ctx)
}

// ForgotPassword starts a password reset.
func (u *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if field, msg, bad := invalid(emailInput{Email: email}); bad {
		return authInputError(field, msg)
	}
	return u.auth.ForgotPassword(ctx, email)
}

// ResetPassword completes a reset.
func (u *AuthUseCase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if field, msg, bad := invalid(codeInput{Email: email, Code: code}); bad {
		return authInputError(field, msg)
	}
	if field, msg, bad := invalid(signUpInput{Email: email, Password: newPassword}); bad {
		return authInputError(field, msg)
	}
	return u.auth.ResetPassword(ctx, email, code, newPassword)
}

// fold turns a façade error into the failure arm.
func fold(result model.AuthResult, err error) model.AuthResult {
	if err != nil {
		return model.AuthFailure{Err: err}
	}
	if result == nil {
		return model.AuthFailure{Err: &repository.AuthError{Code: repository.AuthUnknown, Message: "No response"}}
	}
	return result
}

// authInputError maps a validation failure onto the auth error family.
func authInputError(field, msg string) error {
	code := repository.AuthInvalidCredentials
	switch field {
	case "Password":
		if !strings.HasSuffix(msg, "is required") {
			code = repository.AuthPasswordTooWeak
		}
	case "Code":
		code = repository.AuthInvalidVerificationCode
	}
	return &repository.AuthError{Code: code, Message: msg}
}
