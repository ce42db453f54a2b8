// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// =============================================================================
// STATE
// =============================================================================

// State is a node of the auth state machine.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateAuthenticated
	StateNeedsVerification
	StateError
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateNeedsVerification:
		return "needsVerification"
	case StateError:
		return "error"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// canStart reports whether a sign-in, sign-up or verify may begin from s.
func (s State) canStart() bool {
	switch s {
	case StateIdle, StateError, StateUnauthenticated, StateNeedsVerification:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when an operation is not allowed from
// the current state.
var ErrInvalidTransition = errors.New("invalid auth state transition")

// TransitionError carries the state an operation was refused from.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Snapshot is an immutable view of the flow.
type Snapshot struct {
	State        State
	User         *model.User
	PendingEmail string
	Err          error
}

// =============================================================================
// AUTH FLOW
// =============================================================================

// Authenticator is what the flow drives. *usecase.AuthUseCase satisfies it.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) model.AuthResult
	SignUp(ctx context.Context, in model.SignUpInput) model.AuthResult
	Verify(ctx context.Context, email, code string) model.AuthResult
	Logout(ctx context.Context) error
}

// AuthFlow serializes auth operations through the state machine. It is
// safe for concurrent use; observers are called outside the lock.
type AuthFlow struct {
	mu sync.Mutex

	auth   Authenticator
	logger *zap.Logger

	state        State
	user         *model.User
	pendingEmail string
	err          error

	onChange func(Snapshot)
}

// NewAuthFlow creates a flow in the idle state.
func NewAuthFlow(auth Authenticator, logger *zap.Logger) *AuthFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthFlow{auth: auth, logger: logger.Named("authflow"), state: StateIdle}
}

// OnChange registers the observer notified after every transition.
func (f *AuthFlow) OnChange(fn func(Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// Snapshot returns the current state.
func (f *AuthFlow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// State returns the current state.
func (f *AuthFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *AuthFlow) snapshotLocked() Snapshot {
	return Snapshot{State: f.state, User: f.user, PendingEmail: f.pendingEmail, Err: f.err}
}

// Resume seeds the flow from stored credentials at startup. It only
// applies while idle.
func (f *AuthFlow) Resume(user *model.User, authenticated bool, pendingEmail string) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return
	}
	switch {
	case authenticated:
		f.state, f.user = StateAuthenticated, user
	case pendingEmail != "":
		f.state, f.pendingEmail = StateNeedsVerification, pendingEmail
	default:
		f.state = StateUnauthenticated
	}
	snap, fn := f.snapshotLocked(), f.onChange
	f.mu.Unlock()
	notify(fn, snap)
}

// SignIn runs a sign-in through the state machine.
func (f *AuthFlow) SignIn(ctx context.Context, email, password string) (model.AuthResult, error) {
	return f.run("sign in", func() model.AuthResult { return f.auth.SignIn(ctx, email, password) })
}

// SignUp runs a sign-up through the state machine.
func (f *AuthFlow) SignUp(ctx context.Context, in model.SignUpInput) (model.AuthResult, error) {
	return f.run("sign up", func() model.AuthResult { return f.auth.SignUp(ctx, in) })
}

// Verify submits a verification code. An empty email uses the pending one.
func (f *AuthFlow) Verify(ctx context.Context, email, code string) (model.AuthResult, error) {
	if email == "" {
		email = f.Snapshot().PendingEmail
	}
	return f.run("verify", func() model.AuthResult { return f.auth.Verify(ctx, email, code) })
}

// run moves to loading, performs op and settles on the state its result
// implies. The only error it returns is a refused transition.
func (f *AuthFlow) run(op string, call func() model.AuthResult) (model.AuthResult, error) {
	f.mu.Lock()
	if !f.state.canStart() {
		from := f.state
		f.mu.Unlock()
		return nil, &TransitionError{Op: op, From: from}
	}
	f.state, f.err = StateLoading, nil
	snap, fn := f.snapshotLocked(), f.onChange
	f.mu.Unlock()
	notify(fn, snap)

	result := call()

	f.mu.Lock()
	switch r := result.(type) {
	case model.AuthSuccess:
		user := r.User
		f.state, f.user, f.pendingEmail = StateAuthenticated, &user, ""
	case model.AuthNeedsVerification:
		f.state, f.pendingEmail = StateNeedsVerification, r.Email
	case model.AuthFailure:
		f.state, f.err = StateError, r.Err
		if r.Err == nil {
			f.err = r
		}
	default:
		f.state, f.err = StateError, fmt.Errorf("%s: no result", op)
	}
	f.logger.Debug("auth transition", zap.String("op", op), zap.Stringer("state", f.state))
	snap, fn = f.snapshotLocked(), f.onChange
	f.mu.Unlock()
	notify(fn, snap)

	if result == nil {
		result = model.AuthFailure{Err: snap.Err}
	}
	return result, nil
}

// Logout is allowed only while authenticated and always lands on
// unauthenticated. The returned error is the local clear failure, if any.
func (f *AuthFlow) Logout(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAuthenticated {
		from := f.state
		f.mu.Unlock()
		return &TransitionError{Op: "logout", From: from}
	}
	f.mu.Unlock()

	err := f.auth.Logout(ctx)
	if err != nil {
		f.logger.Warn("logout did not clear local state", zap.Error(err))
	}

	f.mu.Lock()
	f.state, f.user, f.pendingEmail, f.err = StateUnauthenticated, nil, "", nil
	snap, fn := f.snapshotLocked(), f.onChange
	f.mu.Unlock()
	notify(fn, snap)
	return err
}

func notify(fn func(Snapshot), snap Snapshot) {
	if fn != nil {
		fn(snap)
	}
}
