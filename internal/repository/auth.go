// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/credstore"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthRepository talks to the /auth endpoints and owns the local session
// keys in the credential store.
type AuthRepository struct {
	transport Transport
	store     credstore.Store
	logger    *zap.Logger
}

// NewAuthRepository creates an auth façade.
func NewAuthRepository(t Transport, store credstore.Store, logger *zap.Logger) *AuthRepository {
	return &AuthRepository{transport: t, store: store, logger: orNop(logger).Named("auth")}
}

// SignIn exchanges credentials for a token. A success persists the token
// and user; a verification-required answer persists the pending email.
func (r *AuthRepository) SignIn(ctx context.Context, email, password string) (model.AuthResult, error) {
	req := api.Request{Endpoint: api.SignIn(), Body: dto.SignInRequest{Email: email, Password: password}}
	return r.authenticate(ctx, req, email, "Sign in failed")
}

// SignUp creates an account.
func (r *AuthRepository) SignUp(ctx context.Context, in model.SignUpInput) (model.AuthResult, error) {
	req := api.Request{Endpoint: api.SignUp(), Body: dto.SignUpRequest{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}}
	return r.authenticate(ctx, req, in.Email, "Sign up failed")
}

// VerifyEmail submits the emailed code.
func (r *AuthRepository) VerifyEmail(ctx context.Context, email, code string) (model.AuthResult, error) {
	req := api.Request{Endpoint: api.VerifyEmail(), Body: dto.VerifyEmailRequest{Email: email, Code: code}}
	return r.authenticate(ctx, req, email, "Verification failed")
}

func (r *AuthRepository) authenticate(ctx context.Context, req api.Request, email, fallback string) (model.AuthResult, error) {
	payload, err := fetch[dto.AuthResponseDTO](ctx, r.transport, req, fallback)
	if err != nil {
		mapped := toAuthError(err)
		if !errors.Is(mapped, ErrEmailNotVerified) || email == "" {
			return nil, mapped
		}
		// The backend may refuse unverified accounts with 403 instead of
		// a verification_required payload.
		result := model.AuthNeedsVerification{Email: email}
		if err := r.persist(result); err != nil {
			return nil, err
		}
		return result, nil
	}

	result, err := dto.ToAuthResult(payload, email)
	if err != nil {
		return nil, toAuthError(err)
	}
	if err := r.persist(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *AuthRepository) persist(result model.AuthResult) error {
	switch res := result.(type) {
	case model.AuthSuccess:
		if err := r.store.Save(credstore.KeyAuthToken, res.Token); err != nil {
			return storeError(err)
		}
		if err := credstore.SaveUser(r.store, res.User); err != nil {
			return storeError(err)
		}
		if err := r.store.Delete(credstore.KeyPendingEmail); err != nil {
			r.logger.Warn("failed to clear pending email", zap.Error(err))
		}
	case model.AuthNeedsVerification:
		if err := r.store.Save(credstore.KeyPendingEmail, res.Email); err != nil {
			return storeError(err)
		}
	}
	return nil
}

func storeError(err error) error {
	return &AuthError{Code: AuthUnknown, Message: "Failed to save credentials", Err: err}
}

// ResendVerification asks for a new verification code.
func (r *AuthRepository) ResendVerification(ctx context.Context, email string) error {
	req := api.Request{Endpoint: api.ResendVerification(), Body: dto.EmailRequest{Email: email}}
	if err := exec(ctx, r.transport, req, "Could not resend code"); err != nil {
		return toAuthError(err)
	}
	if err := r.store.Save(credstore.KeyPendingEmail, email); err != nil {
		return storeError(err)
	}
	return nil
}

// Logout ends the session. The server call is best effort; local state
// is cleared regardless, and only a failure to clear is returned.
func (r *AuthRepository) Logout(ctx context.Context) error {
	if r.IsAuthenticated() {
		if err := exec(ctx, r.transport, api.Request{Endpoint: api.Logout()}, "Logout failed"); err != nil {
			r.logger.Warn("server logout failed", zap.Error(err))
		}
	}
	return r.ClearSession()
}

// ClearSession drops the local session without contacting the server.
func (r *AuthRepository) ClearSession() error {
	if err := credstore.Clear(r.store); err != nil {
		return storeError(err)
	}
	return nil
}

// CurrentUser fetches the signed-in user and refreshes the cached copy.
func (r *AuthRepository) CurrentUser(ctx context.Context) (model.User, error) {
	payload, err := fetch[dto.MeDTO](ctx, r.transport, api.Request{Endpoint: api.CurrentUser()}, "Failed to load user")
	if err != nil {
		return model.User{}, toAuthError(err)
	}
	user, err := dto.ToCurrentUser(payload)
	if err != nil {
		return model.User{}, toAuthError(err)
	}
	if err := credstore.SaveUser(r.store, user); err != nil {
		r.logger.Warn("failed to cache user", zap.Error(err))
	}
	return user, nil
}

// CachedUser returns the user saved at the last successful sign-in.
func (r *AuthRepository) CachedUser() (model.User, bool) {
	user, ok, err := credstore.LoadUser(r.store)
	if err != nil {
		r.logger.Warn("failed to read cached user", zap.Error(err))
		return model.User{}, false
	}
	return user, ok
}

// IsAuthenticated reports whether a token is stored. Token presence is
// the only signal; validity is discovered on the next call.
func (r *AuthRepository) IsAuthenticated() bool {
	_, ok := r.token()
	return ok
}

func (r *AuthRepository) token() (string, bool) {
	token, ok, err := credstore.Lookup(r.store, credstore.KeyAuthToken)
	if err != nil {
		r.logger.Warn("failed to read token", zap.Error(err))
		return "", false
	}
	return token, ok
}

// RefreshToken trades the current token for a new one and stores it.
func (r *AuthRepository) RefreshToken(ctx context.Context) (string, error) {
	payload, err := fetch[dto.TokenDTO](ctx, r.transport, api.Request{Endpoint: api.RefreshToken()}, "Token refresh failed")
	if err != nil {
		return "", toAuthError(err)
	}
	token, err := dto.ToToken(payload)
	if err != nil {
		return "", toAuthError(err)
	}
	if err := r.store.Save(credstore.KeyAuthToken, token); err != nil {
		return "", storeError(err)
	}
	return token, nil
}

// ForgotPassword starts a password reset.
func (r *AuthRepository) ForgotPassword(ctx context.Context, email string) error {
	req := api.Request{Endpoint: api.ForgotPassword(), Body: dto.EmailRequest{Email: email}}
	return toAuthError(exec(ctx, r.transport, req, "Password reset failed"))
}

// ResetPassword completes a reset with the emailed code.
func (r *AuthRepository) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	req := api.Request{Endpoint: api.ResetPassword(), Body: dto.ResetPasswordRequest{
		Email:       email,
		Code:        code,
		NewPassword: newPassword,
	}}
	return toAuthError(exec(ctx, r.transport, req, "Password reset failed"))
}

// ChangePassword changes the signed-in user's password.
func (r *AuthRepository) ChangePassword(ctx context.Context, current, next string) error {
	req := api.Request{Endpoint: api.ChangePassword(), Body: dto.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}}
	return toAuthError(exec(ctx, r.transport, req, "Password change failed"))
}

// PendingEmail returns the address awaiting verification, if any.
func (r *AuthRepository) PendingEmail() (string, bool) {
	email, ok, err := credstore.Lookup(r.store, credstore.KeyPendingEmail)
	if err != nil {
		r.logger.Warn("failed to read pending email", zap.Error(err))
		return "", false
	}
	return email, ok
}

// SessionExpiry returns the stored token's exp claim. The signature is not
// checked; the result is informational only.
func (r *AuthRepository) SessionExpiry() (time.Time, bool) {
	token, ok := r.token()
	if !ok {
		return time.Time{}, false
	}
	return TokenExpiry(token)
}

// TokenExpiry reads the exp claim of a JWT without verifying it.
// Opaque tokens report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
