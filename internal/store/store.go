// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the raw storage medium beneath the Store. Implementations
// persist opaque byte values under string keys.
type Backend interface {
	// ReadItem returns the value for key, or ok=false if the key is absent.
	ReadItem(key string) (value []byte, ok bool, err error)

	// WriteItem persists value under key, replacing any previous value.
	WriteItem(key string, value []byte) error

	// DeleteItem removes key. Deleting an absent key is not an error.
	DeleteItem(key string) error

	// Keys returns every stored key that starts with prefix.
	Keys(prefix string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// STORE
// =============================================================================

// Store is the typed key/value persistence layer. All keys are namespaced
// under Prefix; values are JSON-encoded. The Store exclusively owns the
// on-disk representation - callers keep the authoritative in-memory view
// and write back through it on every mutation.
type Store struct {
	backend Backend
	log     *zap.Logger
}

// New creates a Store over the given backend.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, log: log}
}

// Get reads and JSON-decodes the value for key into a value of type T.
// Any failure - missing key, backend error, unparseable value - falls back
// to def; Get never fails. Legacy bare "true"/"false" values (written
// before the JSON codec) are tolerated when T is bool.
func Get[T any](s *Store, key string, def T) T {
	raw, ok, err := s.backend.ReadItem(Prefix + key)
	if err != nil {
		s.log.Warn("store read failed", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		// Legacy values were stored as raw strings, not JSON. Bare booleans
		// are the known case; anything else falls back to the default.
		trimmed := strings.TrimSpace(string(raw))
		if trimmed == "true" || trimmed == "false" {
			if b, ok := any(trimmed == "true").(T); ok {
				return b
			}
		}
		s.log.Warn("store value not parseable, using default",
			zap.String("key", key), zap.Error(err))
		return def
	}
	return out
}

// Set JSON-encodes value and persists it under key. A storage-quota failure
// is surfaced as ErrQuotaExceeded; every other failure is logged and
// swallowed so a flaky medium never breaks the in-memory state.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error("store marshal failed", zap.String("key", key), zap.Error(err))
		return nil
	}

	if err := s.backend.WriteItem(Prefix+key, data); err != nil {
		if IsQuotaExceeded(err) {
			return ErrQuotaExceeded
		}
		s.log.Error("store write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Remove deletes key. Failures are logged and swallowed.
func (s *Store) Remove(key string) {
	if err := s.backend.DeleteItem(Prefix + key); err != nil {
		s.log.Error("store remove failed", zap.String("key", key), zap.Error(err))
	}
}

// Has reports whether key currently holds a value.
func (s *Store) Has(key string) bool {
	_, ok, err := s.backend.ReadItem(Prefix + key)
	return err == nil && ok
}

// KeysWithPrefix returns every application key (Prefix stripped) that
// starts with the given sub-prefix. Pass "" for all application keys.
func (s *Store) KeysWithPrefix(prefix string) []string {
	raw, err := s.backend.Keys(Prefix + prefix)
	if err != nil {
		s.log.Warn("store key listing failed", zap.Error(err))
		return nil
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, Prefix))
	}
	return keys
}

// ClearAll removes every namespaced key, irrecoverably. Keys outside the
// application namespace are untouched.
func (s *Store) ClearAll() {
	for _, key := range s.KeysWithPrefix("") {
		s.Remove(key)
	}
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
