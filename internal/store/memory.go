// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryBackend keeps values in a map. Used in tests and as a throwaway
// store when persistence is disabled.
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string][]byte

	// WriteErr, when set, is returned by every WriteItem call. Lets tests
	// simulate quota and backend failures.
	WriteErr error
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string][]byte)}
}

// ReadItem implements Backend.
func (b *MemoryBackend) ReadItem(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// WriteItem implements Backend.
func (b *MemoryBackend) WriteItem(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	b.items[key] = stored
	return nil
}

// DeleteItem implements Backend.
func (b *MemoryBackend) DeleteItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, key)
	return nil
}

// Keys implements Backend.
func (b *MemoryBackend) Keys(prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for k := range b.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	return nil
}

// Len returns the number of stored items.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
