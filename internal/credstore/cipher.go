// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/util"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// EncryptedPrefix marks a sealed value: ENC:base64(nonce|ciphertext|tag).
	EncryptedPrefix = "ENC:"

	KeySize  = 32
	SaltSize = 32

	// PBKDF2Iterations follows the OWASP 2023 recommendation for SHA-256.
	PBKDF2Iterations = 600000
)

var (
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Cipher seals values with AES-256-GCM.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Cipher{aead: gcm}, nil
}

// DeriveKey derives a key from a passphrase with PBKDF2-SHA-256.
func DeriveKey(passphrase string, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		iterations = PBKDF2Iterations
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, KeySize, sha256.New)
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// Seal encrypts plaintext with a random nonce.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce, err := RandomBytes(c.aead.NonceSize())
	if err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts the output of Seal.
func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := c.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// SealString returns the ENC:-prefixed form of s.
func (c *Cipher) SealString(s string) (string, error) {
	sealed, err := c.Seal([]byte(s))
	if err != nil {
		return "", err
	}
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString. Values without the prefix are returned
// unchanged.
func (c *Cipher) OpenString(s string) (string, error) {
	if !strings.HasPrefix(s, EncryptedPrefix) {
		return s, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("invalid base64 encoding: %w", err)
	}
	plaintext, err := c.Open(data)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// zeroBytes overwrites key material.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// loadOrCreateSecret reads size random bytes kept at path, creating them
// (0600) on first use. mustExist reports an error instead of creating a new
// secret, since a fresh one could not open data sealed with the old.
func loadOrCreateSecret(path string, size int, mustExist bool) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != size {
			return nil, fmt.Errorf("%s: want %d bytes, got %d", path, size, len(secret))
		}
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if mustExist {
		return nil, fmt.Errorf("%s is missing for existing credentials", path)
	}
	secret, err = RandomBytes(size)
	if err != nil {
		return nil, err
	}
	// RELIABILITY: Atomic write with fsync prevents a torn key file.
	if err := util.AtomicWriteFile(path, secret, 0600); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return secret, nil
}
