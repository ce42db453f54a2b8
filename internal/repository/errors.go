// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"errors"
	"net/http"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
)

// SessionExpiredMessage is reported when an authenticated call gets 401.
const SessionExpiredMessage = "Your session has expired. Please sign in again."

// NetworkMessage is reported when the backend could not be reached.
const NetworkMessage = "Unable to reach BaatCheet. Check your connection and try again."

// =============================================================================
// AUTH
// =============================================================================

type AuthCode string

const (
	AuthInvalidCredentials      AuthCode = "InvalidCredentials"
	AuthEmailNotVerified        AuthCode = "EmailNotVerified"
	AuthEmailAlreadyExists      AuthCode = "EmailAlreadyExists"
	AuthInvalidVerificationCode AuthCode = "InvalidVerificationCode"
	AuthVerificationCodeExpired AuthCode = "VerificationCodeExpired"
	AuthPasswordTooWeak         AuthCode = "PasswordTooWeak"
	AuthServerError             AuthCode = "ServerError"
	AuthUnknown                 AuthCode = "Unknown"
)

// AuthError is returned by AuthRepository.
type AuthError struct {
	Code    AuthCode
	Message string
	Err     error
}

func (e *AuthError) Error() string { return describeError(string(e.Code), e.Message) }

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches any *AuthError with the same code.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidCredentials      = &AuthError{Code: AuthInvalidCredentials}
	ErrEmailNotVerified        = &AuthError{Code: AuthEmailNotVerified}
	ErrEmailAlreadyExists      = &AuthError{Code: AuthEmailAlreadyExists}
	ErrInvalidVerificationCode = &AuthError{Code: AuthInvalidVerificationCode}
	ErrVerificationCodeExpired = &AuthError{Code: AuthVerificationCodeExpired}
	ErrPasswordTooWeak         = &AuthError{Code: AuthPasswordTooWeak}
	ErrAuthServer              = &AuthError{Code: AuthServerError}
	ErrAuthUnknown             = &AuthError{Code: AuthUnknown}
)

// =============================================================================
// CHAT
// =============================================================================

type ChatCode string

const (
	ChatEmptyMessage          ChatCode = "EmptyMessage"
	ChatInvalidConversationID ChatCode = "InvalidConversationId"
	ChatConversationNotFound  ChatCode = "ConversationNotFound"
	ChatRateLimited           ChatCode = "RateLimited"
	ChatServerError           ChatCode = "ServerError"
	ChatInvalidInput          ChatCode = "InvalidInput"
)

// ChatError is returned by ChatRepository.
type ChatError struct {
	Code    ChatCode
	Message string
	Err     error
}

func (e *ChatError) Error() string { return describeError(string(e.Code), e.Message) }

func (e *ChatError) Unwrap() error { return e.Err }

// Is matches any *ChatError with the same code.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	return ok && t.Code == e.Code
}

var (
	ErrEmptyMessage          = &ChatError{Code: ChatEmptyMessage}
	ErrInvalidConversationID = &ChatError{Code: ChatInvalidConversationID}
	ErrConversationNotFound  = &ChatError{Code: ChatConversationNotFound}
	ErrChatRateLimited       = &ChatError{Code: ChatRateLimited}
	ErrChatServer            = &ChatError{Code: ChatServerError}
	ErrInvalidChatInput      = &ChatError{Code: ChatInvalidInput}
)

// =============================================================================
// PROJECT
// =============================================================================

type ProjectCode string

const (
	ProjectInvalidName      ProjectCode = "InvalidName"
	ProjectInvalidID        ProjectCode = "InvalidId"
	ProjectNotFound         ProjectCode = "NotFound"
	ProjectPermissionDenied ProjectCode = "PermissionDenied"
	ProjectServerError      ProjectCode = "ServerError"
	ProjectInvalidInput     ProjectCode = "InvalidInput"
)

// ProjectError is returned by ProjectRepository.
type ProjectError struct {
	Code    ProjectCode
	Message string
	Err     error
}

func (e *ProjectError) Error() string { return describeError(string(e.Code), e.Message) }

func (e *ProjectError) Unwrap() error { return e.Err }

// Is matches any *ProjectError with the same code.
func (e *ProjectError) Is(target error) bool {
	t, ok := target.(*ProjectError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidProjectName  = &ProjectError{Code: ProjectInvalidName}
	ErrInvalidProjectID    = &ProjectError{Code: ProjectInvalidID}
	ErrProjectNotFound     = &ProjectError{Code: ProjectNotFound}
	ErrPermissionDenied    = &ProjectError{Code: ProjectPermissionDenied}
	ErrProjectServer       = &ProjectError{Code: ProjectServerError}
	ErrInvalidProjectInput = &ProjectError{Code: ProjectInvalidInput}
)

// =============================================================================
// PROFILE
// =============================================================================

type ProfileCode string

const (
	ProfileNotFound     ProfileCode = "NotFound"
	ProfileUpdateFailed ProfileCode = "UpdateFailed"
	ProfileUploadFailed ProfileCode = "UploadFailed"
	ProfileTeachFailed  ProfileCode = "TeachFailed"
	ProfileServerError  ProfileCode = "ServerError"
)

// ProfileError is returned by ProfileRepository.
type ProfileError struct {
	Code    ProfileCode
	Message string
	Err     error
}

func (e *ProfileError) Error() string { return describeError(string(e.Code), e.Message) }

func (e *ProfileError) Unwrap() error { return e.Err }

// Is matches any *ProfileError with the same code.
func (e *ProfileError) Is(target error) bool {
	t, ok := target.(*ProfileError)
	return ok && t.Code == e.Code
}

var (
	ErrProfileNotFound = &ProfileError{Code: ProfileNotFound}
	ErrUpdateFailed    = &ProfileError{Code: ProfileUpdateFailed}
	ErrUploadFailed    = &ProfileError{Code: ProfileUploadFailed}
	ErrTeachFailed     = &ProfileError{Code: ProfileTeachFailed}
	ErrProfileServer   = &ProfileError{Code: ProfileServerError}
)

// =============================================================================
// ANALYTICS
// =============================================================================

type AnalyticsCode string

const (
	AnalyticsUnavailable AnalyticsCode = "Unavailable"
	AnalyticsRejected    AnalyticsCode = "Rejected"
)

// AnalyticsError is returned by AnalyticsRepository.
type AnalyticsError struct {
	Code    AnalyticsCode
	Message string
	Err     error
}

func (e *AnalyticsError) Error() string { return describeError(string(e.Code), e.Message) }

func (e *AnalyticsError) Unwrap() error { return e.Err }

// Is matches any *AnalyticsError with the same code.
func (e *AnalyticsError) Is(target error) bool {
	t, ok := target.(*AnalyticsError)
	return ok && t.Code == e.Code
}

var (
	ErrAnalyticsUnavailable = &AnalyticsError{Code: AnalyticsUnavailable}
	ErrAnalyticsRejected    = &AnalyticsError{Code: AnalyticsRejected}
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

func describeError(code, msg string) string {
	if msg == "" {
		return code
	}
	return msg
}

// failure is what the façades need to know about a lower-layer error.
type failure struct {
	kind   api.Kind
	status int
	msg    string
}

func (f failure) network() bool { return f.kind == api.KindNetwork }

func describe(err error) failure {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if apiErr.Kind == api.KindNetwork {
			msg = NetworkMessage
		}
		if msg == "" {
			msg = api.DefaultErrorMessage
		}
		return failure{kind: apiErr.Kind, status: apiErr.Status, msg: msg}
	}
	if msg, ok := dto.FailureMessage(err); ok {
		return failure{msg: msg}
	}
	return failure{msg: err.Error()}
}

func contains(msg string, needles ...string) bool {
	lower := strings.ToLower(msg)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// authCodeFromMessage recognizes the backend's auth failure texts.
func authCodeFromMessage(msg string) (AuthCode, bool) {
	switch {
	case contains(msg, "already exists", "already registered", "already in use"):
		return AuthEmailAlreadyExists, true
	case contains(msg, "expired"):
		return AuthVerificationCodeExpired, true
	case contains(msg, "verification code", "invalid code", "incorrect code"):
		return AuthInvalidVerificationCode, true
	case contains(msg, "not verified", "verify your email", "unverified"):
		return AuthEmailNotVerified, true
	case contains(msg, "weak", "password must", "at least 8"):
		return AuthPasswordTooWeak, true
	case contains(msg, "invalid credentials", "invalid email or password", "incorrect password", "wrong password"):
		return AuthInvalidCredentials, true
	}
	return "", false
}

func toAuthError(err error) error {
	if err == nil {
		return nil
	}
	var already *AuthError
	if errors.As(err, &already) {
		return err
	}
	f := describe(err)
	code := AuthUnknown
	switch {
	case f.network():
	case f.kind == api.KindUnauthorized:
		code = AuthInvalidCredentials
	case f.kind == api.KindForbidden:
		code = AuthEmailNotVerified
	case f.kind == api.KindServer:
		code = AuthServerError
	case f.status == http.StatusConflict:
		code = AuthEmailAlreadyExists
	case f.status == http.StatusGone:
		code = AuthVerificationCodeExpired
	default:
		if c, ok := authCodeFromMessage(f.msg); ok {
			code = c
		} else if f.status != 0 || errors.Is(err, dto.ErrFailure) {
			code = AuthServerError
		}
	}
	return &AuthError{Code: code, Message: f.msg, Err: err}
}

func toChatError(err error) error {
	if err == nil {
		return nil
	}
	var already *ChatError
	if errors.As(err, &already) {
		return err
	}
	f := describe(err)
	switch f.kind {
	case api.KindInvalidURL:
		return &ChatError{Code: ChatInvalidConversationID, Message: f.msg, Err: err}
	case api.KindNotFound:
		return &ChatError{Code: ChatConversationNotFound, Message: f.msg, Err: err}
	case api.KindRateLimited:
		return &ChatError{Code: ChatRateLimited, Message: f.msg, Err: err}
	case api.KindUnauthorized:
		return &ChatError{Code: ChatServerError, Message: SessionExpiredMessage, Err: err}
	}
	return &ChatError{Code: ChatServerError, Message: f.msg, Err: err}
}

func toProjectError(err error) error {
	if err == nil {
		return nil
	}
	var already *ProjectError
	if errors.As(err, &already) {
		return err
	}
	f := describe(err)
	switch {
	case f.kind == api.KindInvalidURL:
		return &ProjectError{Code: ProjectInvalidID, Message: f.msg, Err: err}
	case f.kind == api.KindNotFound:
		return &ProjectError{Code: ProjectNotFound, Message: f.msg, Err: err}
	case f.kind == api.KindForbidden:
		return &ProjectError{Code: ProjectPermissionDenied, Message: f.msg, Err: err}
	case f.kind == api.KindUnauthorized:
		return &ProjectError{Code: ProjectServerError, Message: SessionExpiredMessage, Err: err}
	case f.kind == api.KindHTTP && contains(f.msg, "name"):
		return &ProjectError{Code: ProjectInvalidName, Message: f.msg, Err: err}
	}
	return &ProjectError{Code: ProjectServerError, Message: f.msg, Err: err}
}

// toProfileError maps err; fallback is the code for anything that is not
// a 404 (the operation's own failure code).
func toProfileError(err error, fallback ProfileCode) error {
	if err == nil {
		return nil
	}
	var already *ProfileError
	if errors.As(err, &already) {
		return err
	}
	f := describe(err)
	switch f.kind {
	case api.KindNotFound:
		return &ProfileError{Code: ProfileNotFound, Message: f.msg, Err: err}
	case api.KindUnauthorized:
		return &ProfileError{Code: fallback, Message: SessionExpiredMessage, Err: err}
	}
	return &ProfileError{Code: fallback, Message: f.msg, Err: err}
}

func toAnalyticsError(err error) error {
	if err == nil {
		return nil
	}
	f := describe(err)
	if f.kind == api.KindHTTP || errors.Is(err, dto.ErrFailure) {
		return &AnalyticsError{Code: AnalyticsRejected, Message: f.msg, Err: err}
	}
	return &AnalyticsError{Code: AnalyticsUnavailable, Message: f.msg, Err: err}
}
