// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides namespaced key/value persistence for the zaviye core.
package store

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// StoreError represents an error from the durable store.
type StoreError struct {
	Type    ErrorType
	Key     string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is comparison by error type.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes store errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeQuotaExceeded
	ErrTypeBackend
	ErrTypeSerialization
)

// ErrQuotaExceeded is returned when the storage medium is full. It carries
// the user-facing message; callers surface it as a dismissible notice.
var ErrQuotaExceeded = &StoreError{
	Type:    ErrTypeQuotaExceeded,
	Message: "Storage quota exceeded. Please clear some old data to continue.",
}

// IsQuotaExceeded reports whether err is a storage-quota failure.
func IsQuotaExceeded(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Type == ErrTypeQuotaExceeded
	}
	return false
}
