// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/config"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
	"github.com/baatcheet/baatcheet-cli/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in; run 'baatcheet login' first")

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError is a usage mistake on the command line.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ErrUnknownSubcommand reports an unrecognized subcommand.
func ErrUnknownSubcommand(command, sub, usage string) error {
	return &ValidationError{Field: command + " subcommand", Value: sub, Reason: "unknown subcommand", Example: usage}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON when jsonMode is set.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
	fmt.Fprintln(w)
}

// DisplayErrorJSON writes err as a JSON object with an error_type tag.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var (
		cmdErr     *CommandError
		valErr     *ValidationError
		authErr    *repository.AuthError
		chatErr    *repository.ChatError
		projectErr *repository.ProjectError
		profileErr *repository.ProfileError
	)
	switch {
	case errors.As(err, &valErr):
		output["error_type"] = "validation_error"
		output["field"] = valErr.Field
		output["reason"] = valErr.Reason
	case errors.As(err, &authErr):
		output["error_type"] = "auth_error"
		output["code"] = string(authErr.Code)
	case errors.As(err, &chatErr):
		output["error_type"] = "chat_error"
		output["code"] = string(chatErr.Code)
	case errors.As(err, &projectErr):
		output["error_type"] = "project_error"
		output["code"] = string(projectErr.Code)
	case errors.As(err, &profileErr):
		output["error_type"] = "profile_error"
		output["code"] = string(profileErr.Code)
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode maps err to a process exit code by inspecting the error
// chain: transport kind first, then the domain error codes.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ExitUsageError
	}

	var cfgErrs config.ValidateErrors
	if errors.As(err, &cfgErrs) {
		return ExitConfigError
	}
	var cfgErr config.ValidationError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}

	if errors.Is(err, ErrNotSignedIn) {
		return ExitAuthError
	}
	if errors.Is(err, session.ErrInvalidTransition) {
		return ExitUsageError
	}

	switch api.KindOf(err) {
	case api.KindNetwork:
		return ExitNetworkError
	case api.KindUnauthorized, api.KindForbidden:
		return ExitAuthError
	case api.KindNotFound:
		return ExitNotFoundError
	}

	switch {
	case errors.Is(err, repository.ErrAuthUnknown):
		return ExitNetworkError
	case errors.Is(err, repository.ErrAuthServer):
		return ExitGeneralError
	}
	var authErr *repository.AuthError
	if errors.As(err, &authErr) {
		return ExitAuthError
	}

	switch {
	case errors.Is(err, repository.ErrConversationNotFound),
		errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrProfileNotFound):
		return ExitNotFoundError
	case errors.Is(err, repository.ErrPermissionDenied):
		return ExitAuthError
	case errors.Is(err, repository.ErrEmptyMessage),
		errors.Is(err, repository.ErrInvalidConversationID),
		errors.Is(err, repository.ErrInvalidChatInput),
		errors.Is(err, repository.ErrInvalidProjectName),
		errors.Is(err, repository.ErrInvalidProjectID),
		errors.Is(err, repository.ErrInvalidProjectInput):
		return ExitUsageError
	}

	return ExitGeneralError
}

// WrapError adds context to err, keeping it in the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
