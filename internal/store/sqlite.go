// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SQLITE BACKEND
// =============================================================================

// SQLiteBackend stores key/value pairs in a single SQLite database file.
// Preferred over FileBackend when histories grow large: one file, one
// fsync per write, and prefix listing without a directory scan.
type SQLiteBackend struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// NewSQLiteBackend opens (creating if needed) the database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &StoreError{
			Type:    ErrTypeBackend,
			Message: "failed to create database directory",
			Cause:   err,
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &StoreError{
			Type: ErrTypeBackend, Message: "failed to open database", Cause: err,
		}
	}

	// Single connection: the core is cooperative single-writer and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, &StoreError{
			Type: ErrTypeBackend, Message: "failed to create schema", Cause: err,
		}
	}

	return &SQLiteBackend{db: db}, nil
}

// ReadItem implements Backend.
func (b *SQLiteBackend) ReadItem(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StoreError{
			Type: ErrTypeBackend, Key: key,
			Message: "failed to read value", Cause: err,
		}
	}
	return value, true, nil
}

// WriteItem implements Backend. A full database/disk surfaces as a quota
// error so the caller can tell the user to free space.
func (b *SQLiteBackend) WriteItem(key string, value []byte) error {
	_, err := b.db.Exec(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		if isSQLiteFull(err) {
			return ErrQuotaExceeded
		}
		return &StoreError{
			Type: ErrTypeBackend, Key: key,
			Message: "failed to write value", Cause: err,
		}
	}
	return nil
}

// DeleteItem implements Backend.
func (b *SQLiteBackend) DeleteItem(key string) error {
	if _, err := b.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return &StoreError{
			Type: ErrTypeBackend, Key: key,
			Message: "failed to delete value", Cause: err,
		}
	}
	return nil
}

// Keys implements Backend.
func (b *SQLiteBackend) Keys(prefix string) ([]string, error) {
	rows, err := b.db.Query(
		"SELECT key FROM kv WHERE key LIKE ? ESCAPE '\\' ORDER BY key",
		likePattern(prefix),
	)
	if err != nil {
		return nil, &StoreError{
			Type: ErrTypeBackend, Message: "failed to list keys", Cause: err,
		}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &StoreError{
				Type: ErrTypeBackend, Message: "failed to scan key", Cause: err,
			}
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// likePattern escapes LIKE metacharacters in prefix and appends the
// wildcard.
func likePattern(prefix string) string {
	prefix = strings.ReplaceAll(prefix, `\`, `\\`)
	prefix = strings.ReplaceAll(prefix, "%", `\%`)
	prefix = strings.ReplaceAll(prefix, "_", `\_`)
	return prefix + "%"
}

// isSQLiteFull reports whether err is SQLITE_FULL (database or disk full).
func isSQLiteFull(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database or disk is full")
}
