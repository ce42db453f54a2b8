// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

const testIterations = 1000

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "creds.json"), FileOptions{Passphrase: "pw", Iterations: testIterations})
	require.NoError(t, err)

	c, err := NewCipher(DeriveKey("pw", []byte("salt"), testIterations))
	require.NoError(t, err)
	db, err := OpenSQLite(filepath.Join(dir, "creds.db"), c)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	plain, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { plain.Close() })

	return map[string]Store{
		"memory":       NewMemory(),
		"file":         file,
		"sqlite":       db,
		"sqlite plain": plain,
	}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(KeyAuthToken)
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.Save(KeyAuthToken, "t1"))
			v, err := s.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Equal(t, "t1", v)

			require.NoError(t, s.Save(KeyAuthToken, "t2"))
			v, err = s.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Equal(t, "t2", v)

			require.NoError(t, s.Delete(KeyAuthToken))
			require.NoError(t, s.Delete(KeyAuthToken))
			_, err = s.Get(KeyAuthToken)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestUserSnapshotAndClear(t *testing.T) {
	s := NewMemory()
	first := "Asha"
	u := model.User{ID: "u1", Email: "a@b.com", FirstName: &first, Tier: model.TierPro}

	require.NoError(t, SaveUser(s, u))
	require.NoError(t, s.Save(KeyAuthToken, "t1"))
	require.NoError(t, s.Save(KeyPendingEmail, "a@b.com"))

	got, ok, err := LoadUser(s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u, got)

	require.NoError(t, Clear(s))
	for _, key := range []string{KeyAuthToken, KeyCachedUser, KeyPendingEmail} {
		_, ok, err := Lookup(s, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	_, ok, err = LoadUser(s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenSource(t *testing.T) {
	s := NewMemory()
	ts := TokenSource{Store: s}

	token, err := ts.BearerToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save(KeyAuthToken, "t1"))
	token, err = ts.BearerToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
}

func TestFile_PersistsSealed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	opts := FileOptions{Passphrase: "correct horse", Iterations: testIterations}

	f, err := OpenFile(path, opts)
	require.NoError(t, err)
	require.NoError(t, f.Save(KeyAuthToken, "secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
	assert.Contains(t, string(raw), EncryptedPrefix)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := OpenFile(path, opts)
	require.NoError(t, err)
	v, err := reopened.Get(KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", v)

	_, err = OpenFile(path, FileOptions{Passphrase: "wrong", Iterations: testIterations})
	assert.True(t, errors.Is(err, ErrDecryptionFailed), "got %v", err)
}

func TestFile_GeneratedKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.json")

	f, err := OpenFile(path, FileOptions{})
	require.NoError(t, err)
	require.NoError(t, f.Save(KeyPendingEmail, "a@b.com"))

	info, err := os.Stat(path + ".key")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := OpenFile(path, FileOptions{})
	require.NoError(t, err)
	v, err := reopened.Get(KeyPendingEmail)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", v)

	require.NoError(t, os.Remove(path+".key"))
	_, err = OpenFile(path, FileOptions{})
	assert.Error(t, err)
}

func TestSQLite_SealsValues(t *testing.T) {
	c, err := NewCipher(DeriveKey("pw", []byte("salt"), testIterations))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "creds.db")

	s, err := OpenSQLite(path, c)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(KeyAuthToken, "secret-token"))

	var stored string
	require.NoError(t, s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, KeyAuthToken).Scan(&stored))
	assert.True(t, strings.HasPrefix(stored, EncryptedPrefix))
	assert.NotContains(t, stored, "secret-token")
}

func TestSQLiteCipher(t *testing.T) {
	for name, opts := range map[string]FileOptions{
		"passphrase": {Passphrase: "pw", Iterations: testIterations},
		"key file":   {},
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "creds.db")

			c, err := SQLiteCipher(path, opts)
			require.NoError(t, err)
			s, err := OpenSQLite(path, c)
			require.NoError(t, err)
			require.NoError(t, s.Save(KeyAuthToken, "tok"))
			require.NoError(t, s.Close())

			c, err = SQLiteCipher(path, opts)
			require.NoError(t, err)
			s, err = OpenSQLite(path, c)
			require.NoError(t, err)
			defer s.Close()
			v, err := s.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Equal(t, "tok", v)
		})
	}
}

func TestSQLiteCipher_MissingSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")
	_, err := SQLiteCipher(path, FileOptions{})
	require.NoError(t, err)
	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, os.Remove(path+".key"))
	_, err = SQLiteCipher(path, FileOptions{})
	assert.Error(t, err)
}

func TestCipher(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.Error(t, err)

	key, err := RandomBytes(KeySize)
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)

	a, err := c.SealString("hello")
	require.NoError(t, err)
	b, err := c.SealString("hello")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonces must differ")

	plain, err := c.OpenString(a)
	require.NoError(t, err)
	assert.Equal(t, "hello", plain)

	passthrough, err := c.OpenString("not sealed")
	require.NoError(t, err)
	assert.Equal(t, "not sealed", passthrough)

	_, err = c.Open([]byte{1, 2})
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
