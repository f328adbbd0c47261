// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newMemoryStore() (*Store, *MemoryBackend) {
	backend := NewMemoryBackend()
	return New(backend, zap.NewNop()), backend
}

func TestStore_GetSetRoundTrip(t *testing.T) {
	s, _ := newMemoryStore()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := s.Set("thing", payload{Name: "x", Count: 3}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got := Get(s, "thing", payload{})
	if got.Name != "x" || got.Count != 3 {
		t.Errorf("Get = %+v, want {x 3}", got)
	}
}

func TestStore_GetMissingReturnsDefault(t *testing.T) {
	s, _ := newMemoryStore()

	got := Get(s, "absent", "fallback")
	if got != "fallback" {
		t.Errorf("Get = %q, want fallback", got)
	}
}

func TestStore_GetToleratesLegacyBool(t *testing.T) {
	s, backend := newMemoryStore()

	// Legacy values were written as bare strings, not JSON. "true" happens
	// to also be valid JSON, so exercise both spellings.
	backend.WriteItem(Prefix+"started", []byte("true"))
	if got := Get(s, "started", false); got != true {
		t.Error("legacy \"true\" should decode as true")
	}

	backend.WriteItem(Prefix+"started", []byte("  false "))
	if got := Get(s, "started", true); got != false {
		t.Error("legacy \"false\" should decode as false")
	}
}

func TestStore_GetToleratesGarbage(t *testing.T) {
	s, backend := newMemoryStore()

	backend.WriteItem(Prefix+"junk", []byte("{not json"))
	got := Get(s, "junk", 42)
	if got != 42 {
		t.Errorf("Get on garbage = %d, want default 42", got)
	}
}

func TestStore_SetSurfacesQuota(t *testing.T) {
	s, backend := newMemoryStore()
	backend.WriteErr = ErrQuotaExceeded

	err := s.Set("key", "value")
	if !IsQuotaExceeded(err) {
		t.Fatalf("Expected quota error, got %v", err)
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Error("errors.Is should match ErrQuotaExceeded")
	}
}

func TestStore_SetSwallowsOtherFailures(t *testing.T) {
	s, backend := newMemoryStore()
	backend.WriteErr = &StoreError{Type: ErrTypeBackend, Message: "boom"}

	if err := s.Set("key", "value"); err != nil {
		t.Errorf("Non-quota failures must be swallowed, got %v", err)
	}
}

func TestStore_Namespacing(t *testing.T) {
	s, backend := newMemoryStore()

	// A foreign key sharing the medium must survive ClearAll.
	backend.WriteItem("other-app-key", []byte(`"keep"`))

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("glitch-messages", 3)

	keys := s.KeysWithPrefix("")
	if len(keys) != 3 {
		t.Fatalf("KeysWithPrefix(\"\") = %v, want 3 app keys", keys)
	}
	for _, k := range keys {
		if k == "other-app-key" {
			t.Error("foreign key leaked into app key listing")
		}
	}

	sub := s.KeysWithPrefix("glitch-")
	if len(sub) != 1 || sub[0] != "glitch-messages" {
		t.Errorf("KeysWithPrefix(\"glitch-\") = %v", sub)
	}

	s.ClearAll()
	if got := s.KeysWithPrefix(""); len(got) != 0 {
		t.Errorf("after ClearAll app keys = %v, want none", got)
	}
	if _, ok, _ := backend.ReadItem("other-app-key"); !ok {
		t.Error("ClearAll must not touch foreign keys")
	}
}

func TestStore_RemoveAndHas(t *testing.T) {
	s, _ := newMemoryStore()

	s.Set("key", "value")
	if !s.Has("key") {
		t.Error("Has = false after Set")
	}

	s.Remove("key")
	if s.Has("key") {
		t.Error("Has = true after Remove")
	}

	// Removing an absent key is a no-op.
	s.Remove("key")
}

// =============================================================================
// FILE BACKEND
// =============================================================================

func TestFileBackend_RoundTrip(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	runBackendSuite(t, backend)
}

func TestFileBackend_KeyEscaping(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}

	key := "zaviye-weird/../key%name"
	if err := backend.WriteItem(key, []byte("v")); err != nil {
		t.Fatalf("WriteItem failed: %v", err)
	}
	value, ok, err := backend.ReadItem(key)
	if err != nil || !ok {
		t.Fatalf("ReadItem = %v, %v", ok, err)
	}
	if string(value) != "v" {
		t.Errorf("value = %q", value)
	}

	keys, _ := backend.Keys("zaviye-")
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("Keys = %v, want [%q]", keys, key)
	}
}

// =============================================================================
// SQLITE BACKEND
// =============================================================================

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "zaviye.db"))
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	defer backend.Close()
	runBackendSuite(t, backend)
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "zaviye.db")

	backend, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	if err := backend.WriteItem("zaviye-persist", []byte("survives")); err != nil {
		t.Fatalf("WriteItem failed: %v", err)
	}
	backend.Close()

	reopened, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.ReadItem("zaviye-persist")
	if err != nil || !ok {
		t.Fatalf("ReadItem after reopen = %v, %v", ok, err)
	}
	if string(value) != "survives" {
		t.Errorf("value = %q", value)
	}
}

// runBackendSuite exercises the Backend contract against any implementation.
func runBackendSuite(t *testing.T, backend Backend) {
	t.Helper()

	// Absent key.
	if _, ok, err := backend.ReadItem("zaviye-none"); ok || err != nil {
		t.Fatalf("ReadItem(absent) = %v, %v", ok, err)
	}

	// Write, read back.
	if err := backend.WriteItem("zaviye-a", []byte("1")); err != nil {
		t.Fatalf("WriteItem failed: %v", err)
	}
	value, ok, err := backend.ReadItem("zaviye-a")
	if err != nil || !ok || string(value) != "1" {
		t.Fatalf("ReadItem = %q, %v, %v", value, ok, err)
	}

	// Overwrite.
	if err := backend.WriteItem("zaviye-a", []byte("2")); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	value, _, _ = backend.ReadItem("zaviye-a")
	if string(value) != "2" {
		t.Errorf("after overwrite value = %q", value)
	}

	// Prefix listing.
	backend.WriteItem("zaviye-b", []byte("3"))
	backend.WriteItem("unrelated", []byte("4"))
	keys, err := backend.Keys("zaviye-")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Keys = %v, want 2 entries", keys)
	}

	// Delete, including an absent key.
	if err := backend.DeleteItem("zaviye-a"); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if err := backend.DeleteItem("zaviye-a"); err != nil {
		t.Errorf("Deleting an absent key should be a no-op, got %v", err)
	}
	if _, ok, _ := backend.ReadItem("zaviye-a"); ok {
		t.Error("value still present after delete")
	}
}
