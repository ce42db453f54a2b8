// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import "strings"

// Envelope is the standard response wrapper.
type Envelope[T any] struct {
	Success *bool   `json:"success"`
	Data    *T      `json:"data"`
	Error   *string `json:"error"`
	Message *string `json:"message"`
}

// OK reports whether the envelope carries success:true. A missing flag is
// not success.
func (e Envelope[T]) OK() bool {
	return e.Success != nil && *e.Success
}

// Err returns a *FailureError for an unsuccessful envelope, or nil.
// The message is error, then message, then fallback.
func (e Envelope[T]) Err(fallback string) error {
	if e.OK() {
		return nil
	}
	msg := nonEmpty(e.Error)
	if msg == "" {
		msg = nonEmpty(e.Message)
	}
	if msg == "" {
		msg = fallback
	}
	return &FailureError{Message: msg}
}

// Value returns the payload. An unsuccessful envelope yields *FailureError;
// a successful one without data yields *MappingError.
func (e Envelope[T]) Value(fallback string) (T, error) {
	var zero T
	if err := e.Err(fallback); err != nil {
		return zero, err
	}
	if e.Data == nil {
		return zero, mappingErr("envelope", "data is missing")
	}
	return *e.Data, nil
}

// Optional returns the payload, which may be nil on success.
func (e Envelope[T]) Optional(fallback string) (*T, error) {
	if err := e.Err(fallback); err != nil {
		return nil, err
	}
	return e.Data, nil
}

// Items unwraps a list envelope. Missing or null data is a *MappingError;
// an absent list inside data is an empty list.
func Items[T any](e Envelope[List[T]], fallback string) ([]T, error) {
	if err := e.Err(fallback); err != nil {
		return nil, err
	}
	if e.Data == nil {
		return nil, mappingErr("envelope", "data is missing")
	}
	return e.Data.Slice(), nil
}

func nonEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
