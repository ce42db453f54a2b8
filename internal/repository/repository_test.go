// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/credstore"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// routes maps "METHOD /path" (without the API prefix) to a handler.
type routes map[string]http.HandlerFunc

func newTransport(t *testing.T, rs routes, tokens api.TokenSource) (*api.Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, api.DefaultAPIPrefix)
		h, ok := rs[key]
		if !ok {
			t.Errorf("unexpected request %s", key)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, tokens), &hits
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// readBody decodes a JSON request body. It runs on the server goroutine,
// so it reports with assert rather than require.
func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func newAuthRepo(t *testing.T, rs routes) (*AuthRepository, *credstore.Memory, *atomic.Int32) {
	t.Helper()
	store := credstore.NewMemory()
	client, hits := newTransport(t, rs, credstore.TokenSource{Store: store})
	return NewAuthRepository(client, store, zap.NewNop()), store, hits
}

func stored(t *testing.T, s credstore.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := credstore.Lookup(s, key)
	require.NoError(t, err)
	return v, ok
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuth_SignInPersistsSession(t *testing.T) {
	repo, store, _ := newAuthRepo(t, routes{
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			body := readBody(t, r)
			assert.Equal(t, "a@b.com", body["email"])
			assert.Equal(t, "secret", body["password"])
			reply(http.StatusOK, `{"success":true,"data":{"token":"t1","user":{"id":"u1","email":"a@b.com"}}}`)(w, r)
		},
	})

	result, err := repo.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	success, ok := result.(model.AuthSuccess)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, "t1", success.Token)
	assert.Equal(t, "u1", success.UserID)

	token, ok := stored(t, store, credstore.KeyAuthToken)
	assert.True(t, ok)
	assert.Equal(t, "t1", token)

	user, ok := repo.CachedUser()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, model.TierFree, user.Tier)
	assert.True(t, repo.IsAuthenticated())
}

func TestAuth_SignInNeedsVerification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status payload", reply(http.StatusOK, `{"success":true,"data":{"status":"verification_required"}}`)},
		{"requires flag", reply(http.StatusOK, `{"success":true,"data":{"requires_verification":true,"email":"a@b.com"}}`)},
		{"forbidden", reply(http.StatusForbidden, `{"success":false,"error":"Email not verified"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store, _ := newAuthRepo(t, routes{"POST /auth/login": tt.handler})

			result, err := repo.SignIn(context.Background(), "a@b.com", "secret")
			require.NoError(t, err)
			assert.Equal(t, model.AuthNeedsVerification{Email: "a@b.com"}, result)

			pending, ok := repo.PendingEmail()
			assert.True(t, ok)
			assert.Equal(t, "a@b.com", pending)
			_, ok = stored(t, store, credstore.KeyAuthToken)
			assert.False(t, ok)
		})
	}
}

func TestAuth_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		want      error
		transport error
	}{
		{"unauthorized", reply(401, `{"error":"Invalid email or password"}`), ErrInvalidCredentials, api.ErrUnauthorized},
		{"conflict", reply(409, `{"error":"Account exists"}`), ErrEmailAlreadyExists, api.ErrHTTP},
		{"weak password", reply(400, `{"error":"Password is too weak"}`), ErrPasswordTooWeak, api.ErrHTTP},
		{"server", reply(503, `{"error":"maintenance"}`), ErrAuthServer, api.ErrServer},
		{"unknown 4xx", reply(422, `{"error":"nope"}`), ErrAuthServer, api.ErrHTTP},
		{"envelope failure", reply(200, `{"success":false,"error":"Email already registered"}`), ErrEmailAlreadyExists, nil},
		{"missing token", reply(200, `{"success":true,"data":{"user":{"id":"u1"}}}`), ErrAuthUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store, _ := newAuthRepo(t, routes{"POST /auth/register": tt.handler})

			result, err := repo.SignUp(context.Background(), model.SignUpInput{Email: "a@b.com", Password: "password1"})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			if tt.transport != nil {
				assert.True(t, errors.Is(err, tt.transport), "cause %v", err)
			}
			assert.False(t, repo.IsAuthenticated())
			_, ok := stored(t, store, credstore.KeyCachedUser)
			assert.False(t, ok)
		})
	}
}

func TestAuth_VerifyCodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"gone", reply(410, `{"error":"Code no longer valid"}`), ErrVerificationCodeExpired},
		{"expired text", reply(400, `{"error":"Verification code expired"}`), ErrVerificationCodeExpired},
		{"invalid text", reply(400, `{"error":"Invalid verification code"}`), ErrInvalidVerificationCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, _ := newAuthRepo(t, routes{"POST /auth/verify-email": tt.handler})
			_, err := repo.VerifyEmail(context.Background(), "a@b.com", "123456")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAuth_VerifyEmailClearsPending(t *testing.T) {
	repo, store, _ := newAuthRepo(t, routes{
		"POST /auth/verify-email": reply(200, `{"success":true,"data":{"access_token":"t2","user":{"id":"u2","email":"a@b.com"}}}`),
	})
	require.NoError(t, store.Save(credstore.KeyPendingEmail, "a@b.com"))

	result, err := repo.VerifyEmail(context.Background(), "a@b.com", "123456")
	require.NoError(t, err)
	assert.IsType(t, model.AuthSuccess{}, result)

	_, ok := repo.PendingEmail()
	assert.False(t, ok)
	token, _ := stored(t, store, credstore.KeyAuthToken)
	assert.Equal(t, "t2", token)
}

func TestAuth_LogoutClearsLocalStateOnServerFailure(t *testing.T) {
	repo, store, hits := newAuthRepo(t, routes{
		"POST /auth/logout": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
			reply(500, `{"error":"boom"}`)(w, r)
		},
	})
	require.NoError(t, store.Save(credstore.KeyAuthToken, "t1"))
	require.NoError(t, credstore.SaveUser(store, model.User{ID: "u1"}))
	require.NoError(t, store.Save(credstore.KeyPendingEmail, "a@b.com"))

	require.NoError(t, repo.Logout(context.Background()))
	assert.Equal(t, int32(1), hits.Load())
	assert.False(t, repo.IsAuthenticated())
	_, ok := repo.CachedUser()
	assert.False(t, ok)
	_, ok = repo.PendingEmail()
	assert.False(t, ok)
}

func TestAuth_LogoutWithoutTokenSkipsServer(t *testing.T) {
	repo, _, hits := newAuthRepo(t, routes{})
	require.NoError(t, repo.Logout(context.Background()))
	assert.Zero(t, hits.Load())
}

func TestAuth_CurrentUserRefreshesCache(t *testing.T) {
	repo, store, _ := newAuthRepo(t, routes{
		"GET /auth/me": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
			reply(200, `{"success":true,"data":{"user":{"id":"u1","email":"a@b.com","first_name":"Asha","tier":"pro"}}}`)(w, r)
		},
	})
	require.NoError(t, store.Save(credstore.KeyAuthToken, "t1"))

	user, err := repo.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asha", *user.FirstName)

	cached, ok := repo.CachedUser()
	require.True(t, ok)
	assert.True(t, cached.IsPro())
}

func TestAuth_CurrentUserUnauthorized(t *testing.T) {
	repo, _, _ := newAuthRepo(t, routes{"GET /auth/me": reply(401, `{"error":"Token expired"}`)})
	_, err := repo.CurrentUser(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, "Token expired", err.Error())
}

func TestAuth_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	store := credstore.NewMemory()
	repo := NewAuthRepository(api.NewClient(srv.URL, nil), store, nil)

	_, err := repo.SignIn(context.Background(), "a@b.com", "secret")
	assert.True(t, errors.Is(err, ErrAuthUnknown), "got %v", err)
	assert.True(t, errors.Is(err, api.ErrNetwork))
	assert.Equal(t, NetworkMessage, err.Error())
}

func TestAuth_RefreshToken(t *testing.T) {
	repo, store, _ := newAuthRepo(t, routes{
		"POST /auth/refresh": reply(200, `{"success":true,"data":{"token":"t9"}}`),
	})
	require.NoError(t, store.Save(credstore.KeyAuthToken, "t1"))

	token, err := repo.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t9", token)
	saved, _ := stored(t, store, credstore.KeyAuthToken)
	assert.Equal(t, "t9", saved)
}

func TestAuth_PasswordFlows(t *testing.T) {
	repo, _, hits := newAuthRepo(t, routes{
		"POST /auth/forgot-password": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "a@b.com", readBody(t, r)["email"])
			reply(200, `{"success":true,"message":"sent"}`)(w, r)
		},
		"POST /auth/reset-password": func(w http.ResponseWriter, r *http.Request) {
			body := readBody(t, r)
			assert.Equal(t, "123456", body["code"])
			assert.Equal(t, "newpass12", body["new_password"])
			w.WriteHeader(http.StatusNoContent)
		},
		"POST /auth/change-password": reply(200, `{"success":false,"error":"Incorrect password"}`),
	})
	ctx := context.Background()

	require.NoError(t, repo.ForgotPassword(ctx, "a@b.com"))
	require.NoError(t, repo.ResetPassword(ctx, "a@b.com", "123456", "newpass12"))
	err := repo.ChangePassword(ctx, "old", "newpass12")
	assert.True(t, errors.Is(err, ErrInvalidCredentials), "got %v", err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestAuth_ResendVerificationSavesPendingEmail(t *testing.T) {
	repo, _, _ := newAuthRepo(t, routes{"POST /auth/resend-verification": reply(200, `{"success":true}`)})
	require.NoError(t, repo.ResendVerification(context.Background(), "a@b.com"))
	email, ok := repo.PendingEmail()
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", email)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)

	store := credstore.NewMemory()
	repo := NewAuthRepository(nil, store, nil)
	_, ok = repo.SessionExpiry()
	assert.False(t, ok)
	require.NoError(t, store.Save(credstore.KeyAuthToken, signed))
	got, ok = repo.SessionExpiry()
	assert.True(t, ok)
	assert.True(t, exp.Equal(got))
}
