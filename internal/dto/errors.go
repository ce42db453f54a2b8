// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"errors"
	"fmt"
)

var (
	// ErrMapping is matched by every *MappingError.
	ErrMapping = errors.New("response mapping failed")

	// ErrFailure is matched by every *FailureError.
	ErrFailure = errors.New("request unsuccessful")
)

// MappingError reports a DTO that could not become a domain model.
type MappingError struct {
	DTO    string
	Reason string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("map %s: %s: %v", e.DTO, e.Reason, e.Err)
	}
	return fmt.Sprintf("map %s: %s", e.DTO, e.Reason)
}

func (e *MappingError) Unwrap() error { return e.Err }

func (e *MappingError) Is(target error) bool { return target == ErrMapping }

// FailureError is an envelope with success=false.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string { return e.Message }

func (e *FailureError) Is(target error) bool { return target == ErrFailure }

// FailureMessage returns the message of a *FailureError in err's chain.
func FailureMessage(err error) (string, bool) {
	var f *FailureError
	if errors.As(err, &f) {
		return f.Message, true
	}
	return "", false
}

func mappingErr(dto, reason string) error {
	return &MappingError{DTO: dto, Reason: reason}
}
