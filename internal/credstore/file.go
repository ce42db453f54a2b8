// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/baatcheet/baatcheet-cli/internal/util"
)

const fileFormatVersion = 1

// FileOptions selects how the file key is obtained. With a passphrase the
// key is derived via PBKDF2 using a salt stored in the file; without one a
// random key is generated once and kept at KeyPath (0600).
type FileOptions struct {
	Passphrase string
	KeyPath    string
	// Iterations overrides PBKDF2Iterations; tests lower it.
	Iterations int
}

type fileFormat struct {
	Version int    `json:"version"`
	Salt    string `json:"salt,omitempty"`
	Data    string `json:"data"`
}

// File is a Store kept in a single sealed file. Every write rewrites the
// file atomically.
type File struct {
	mu     sync.Mutex
	path   string
	salt   []byte
	cipher *Cipher
	values map[string]string
}

// OpenFile opens or creates the store at path.
func OpenFile(path string, opts FileOptions) (*File, error) {
	f := &File{path: path, values: make(map[string]string)}

	var existing *fileFormat
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		existing = &fileFormat{}
		if err := json.Unmarshal(raw, existing); err != nil {
			return nil, fmt.Errorf("parse credential file: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	key, err := f.loadKey(existing, opts)
	if err != nil {
		return nil, err
	}
	// SECURITY: Zero key material once the cipher holds it.
	defer zeroBytes(key)

	if f.cipher, err = NewCipher(key); err != nil {
		return nil, err
	}

	if existing != nil && existing.Data != "" {
		plain, err := f.cipher.OpenString(existing.Data)
		if err != nil {
			return nil, fmt.Errorf("unlock credential file: %w", err)
		}
		if err := json.Unmarshal([]byte(plain), &f.values); err != nil {
			return nil, fmt.Errorf("decode credential file: %w", err)
		}
	}
	return f, nil
}

func (f *File) loadKey(existing *fileFormat, opts FileOptions) ([]byte, error) {
	if opts.Passphrase != "" {
		if existing != nil && existing.Salt != "" {
			salt, err := base64.StdEncoding.DecodeString(existing.Salt)
			if err != nil {
				return nil, fmt.Errorf("invalid salt: %w", err)
			}
			f.salt = salt
		} else {
			salt, err := RandomBytes(SaltSize)
			if err != nil {
				return nil, err
			}
			f.salt = salt
		}
		return DeriveKey(opts.Passphrase, f.salt, opts.Iterations), nil
	}

	keyPath := opts.KeyPath
	if keyPath == "" {
		keyPath = f.path + ".key"
	}
	return loadOrCreateSecret(keyPath, KeySize, existing != nil && existing.Data != "")
}

// Path returns the credential file path.
func (f *File) Path() string { return f.path }

func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Save(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.flush(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// flush seals the whole map and replaces the file. Caller holds mu.
func (f *File) flush() error {
	plain, err := json.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	sealed, err := f.cipher.SealString(string(plain))
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}
	out := fileFormat{Version: fileFormatVersion, Data: sealed}
	if f.salt != nil {
		out.Salt = base64.StdEncoding.EncodeToString(f.salt)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}
