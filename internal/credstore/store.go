// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// Well-known keys.
const (
	KeyAuthToken    = "auth_token"
	KeyCachedUser   = "cached_user"
	KeyPendingEmail = "pending_verification_email"
)

// ErrNotFound is returned by Get for a key with no value.
var ErrNotFound = errors.New("credential not found")

// Store is a small string key/value store for credentials. Delete of a
// missing key is not an error.
type Store interface {
	Get(key string) (string, error)
	Save(key, value string) error
	Delete(key string) error
}

// Lookup returns the value for key, reporting absence as ok=false rather
// than an error.
func Lookup(s Store, key string) (string, bool, error) {
	v, err := s.Get(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return v, v != "", nil
}

// SaveUser stores the cached user snapshot.
func SaveUser(s Store, u model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	return s.Save(KeyCachedUser, string(data))
}

// LoadUser reads the cached user snapshot.
func LoadUser(s Store) (model.User, bool, error) {
	raw, ok, err := Lookup(s, KeyCachedUser)
	if err != nil || !ok {
		return model.User{}, false, err
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return model.User{}, false, fmt.Errorf("decode cached user: %w", err)
	}
	return u, true, nil
}

// Clear removes every session key, attempting all of them and returning
// the first failure.
func Clear(s Store) error {
	var first error
	for _, key := range []string{KeyAuthToken, KeyCachedUser, KeyPendingEmail} {
		if err := s.Delete(key); err != nil && first == nil {
			first = fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return first
}

// TokenSource adapts a Store to the transport's token source.
type TokenSource struct {
	Store Store
}

// BearerToken returns the stored token, or "" when there is none.
func (t TokenSource) BearerToken(context.Context) (string, error) {
	token, _, err := Lookup(t.Store, KeyAuthToken)
	return token, err
}
