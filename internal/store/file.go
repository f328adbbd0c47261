// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jeranaias/zaviye/internal/util"
)

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileBackend stores one file per key under a base directory. Writes are
// atomic (temp file + fsync + rename) so a crash never leaves a partial
// value behind.
type FileBackend struct {
	baseDir string
}

// NewFileBackend creates a file backend rooted at baseDir.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, &StoreError{
			Type:    ErrTypeBackend,
			Message: "failed to create storage directory",
			Cause:   err,
		}
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// ReadItem implements Backend.
func (b *FileBackend) ReadItem(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &StoreError{
			Type: ErrTypeBackend, Key: key,
			Message: "failed to read value", Cause: err,
		}
	}
	return data, true, nil
}

// WriteItem implements Backend. A full disk surfaces as a quota error.
func (b *FileBackend) WriteItem(key string, value []byte) error {
	if err := util.AtomicWriteFile(b.path(key), value, 0644); err != nil {
		if isDiskFull(err) {
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
func (b *FileBackend) DeleteItem(key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return &StoreError{
			Type: ErrTypeBackend, Key: key,
			Message: "failed to delete value", Cause: err,
		}
	}
	return nil
}

// Keys implements Backend.
func (b *FileBackend) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StoreError{
			Type: ErrTypeBackend, Message: "failed to list keys", Cause: err,
		}
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key := keyFromFilename(strings.TrimSuffix(entry.Name(), ".json"))
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}

// path maps a key to its file. Path separators in keys are escaped so a
// key can never point outside the base directory.
func (b *FileBackend) path(key string) string {
	return filepath.Join(b.baseDir, filenameFromKey(key)+".json")
}

func filenameFromKey(key string) string {
	key = strings.ReplaceAll(key, "%", "%25")
	key = strings.ReplaceAll(key, "/", "%2F")
	key = strings.ReplaceAll(key, "\\", "%5C")
	return key
}

func keyFromFilename(name string) string {
	name = strings.ReplaceAll(name, "%5C", "\\")
	name = strings.ReplaceAll(name, "%2F", "/")
	name = strings.ReplaceAll(name, "%25", "%")
	return name
}

// isDiskFull reports whether err indicates an exhausted storage medium.
func isDiskFull(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
