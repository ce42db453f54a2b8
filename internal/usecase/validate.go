// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package usecase holds thin validation wrappers in front of the
// repository façades. Input is normalized and checked here so that
// obviously bad requests never reach the network.
package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Upload limits. Text limits live in the validate tags.
const (
	MaxAvatarSize = 5 << 20
	MaxUploadSize = 25 << 20
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize trims s and puts it in Unicode NFC so that visually identical
// input compares equal.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func normalizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalize(*s)
	return &v
}

// invalid runs struct validation and reports the first failure as a field
// name and a readable message.
func invalid(v any) (field, msg string, failed bool) {
	err := validate.Struct(v)
	if err == nil {
		return "", "", false
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", err.Error(), true
	}
	e := verrs[0]
	return e.Field(), formatFieldError(e), true
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, e.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
