// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const credentialSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLite is a Store backed by a SQLite database. When a cipher is given,
// values are sealed before they reach the database.
type SQLite struct {
	db     *sql.DB
	cipher *Cipher
}

// OpenSQLite opens or creates the database at path. c may be nil.
func OpenSQLite(path string, c *Cipher) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(credentialSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db, cipher: c}, nil
}

// SQLiteCipher builds the value cipher for the database at path using the
// same key options as OpenFile. A passphrase is stretched with a salt kept
// at path+".salt"; without one a random key is kept at KeyPath.
func SQLiteCipher(path string, opts FileOptions) (*Cipher, error) {
	_, statErr := os.Stat(path)
	existing := statErr == nil

	var key []byte
	var err error
	if opts.Passphrase != "" {
		var salt []byte
		if salt, err = loadOrCreateSecret(path+".salt", SaltSize, existing); err != nil {
			return nil, err
		}
		key = DeriveKey(opts.Passphrase, salt, opts.Iterations)
	} else {
		keyPath := opts.KeyPath
		if keyPath == "" {
			keyPath = path + ".key"
		}
		if key, err = loadOrCreateSecret(keyPath, KeySize, existing); err != nil {
			return nil, err
		}
	}
	defer zeroBytes(key)
	return NewCipher(key)
}

func (s *SQLite) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if s.cipher != nil {
		return s.cipher.OpenString(value)
	}
	return value, nil
}

func (s *SQLite) Save(key, value string) error {
	if s.cipher != nil {
		sealed, err := s.cipher.SealString(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	_, err := s.db.Exec(`
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
