// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the durable key/value layer for the zaviye core.
//
// Every key is namespaced under the application prefix; values are JSON.
// Reads are tolerant: a missing or unparseable value falls back to the
// caller-supplied default and never fails. Writes surface only storage-quota
// failures (ErrQuotaExceeded); other write failures are logged and swallowed.
//
// # Key Types
//
//   - Store: typed get/set/remove over a Backend
//   - Backend: raw byte-level medium (FileBackend, SQLiteBackend, MemoryBackend)
//   - StoreError: typed error with quota detection via IsQuotaExceeded
//
// # Usage
//
//	backend, _ := store.NewSQLiteBackend(dbPath)
//	s := store.New(backend, logger)
//
//	msgs := store.Get(s, store.ChatMessagesKey(id), []model.Message{})
//	err := s.Set(store.ChatMessagesKey(id), msgs)
package store
