// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindInvalidResponse
	KindDecoding
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindServer
	KindHTTP
	KindNetwork
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "InvalidURL"
	case KindInvalidResponse:
		return "InvalidResponse"
	case KindDecoding:
		return "DecodingError"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindRateLimited:
		return "RateLimited"
	case KindServer:
		return "ServerError"
	case KindHTTP:
		return "HttpError"
	case KindNetwork:
		return "NetworkError"
	default:
		return "Unknown"
	}
}

// DefaultErrorMessage is used when an error body carries no message.
const DefaultErrorMessage = "Unknown error"

// Error is a transport-level failure. Status is set for every kind derived
// from an HTTP response; Err holds the underlying cause for DecodingError,
// NetworkError, InvalidURL and InvalidResponse.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target with a zero Status
// matches any status, so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

// Sentinels for errors.Is.
var (
	ErrInvalidURL      = &Error{Kind: KindInvalidURL}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrDecoding        = &Error{Kind: KindDecoding}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrRateLimited     = &Error{Kind: KindRateLimited}
	ErrServer          = &Error{Kind: KindServer}
	ErrHTTP            = &Error{Kind: KindHTTP}
	ErrNetwork         = &Error{Kind: KindNetwork}
)

// KindOf returns the transport kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server-supplied message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// classifyStatus maps a non-2xx status to its error, in priority order:
// 401, 403, 404, 429, 5xx, anything else.
func classifyStatus(status int, body []byte) *Error {
	msg := extractMessage(body)
	switch {
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, Status: status, Message: msg}
	case status == http.StatusForbidden:
		return &Error{Kind: KindForbidden, Status: status, Message: msg}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, Message: msg}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Status: status, Message: msg}
	case status >= 500 && status <= 599:
		return &Error{Kind: KindServer, Status: status, Message: msg}
	default:
		return &Error{Kind: KindHTTP, Status: status, Message: msg}
	}
}

// extractMessage is a best-effort decode of an error envelope. It accepts
// {"error": "..."}, {"error": {"message": "..."}} and {"message": "..."}.
func extractMessage(body []byte) string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return DefaultErrorMessage
	}
	if v, ok := raw["error"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(v, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
			return nested.Message
		}
	}
	if v, ok := raw["message"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return DefaultErrorMessage
}
