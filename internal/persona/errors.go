// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"fmt"
)

// ErrorType classifies registry failures.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeBuiltinDelete means the caller tried to delete a shipped persona.
	ErrTypeBuiltinDelete
	// ErrTypeInvalidImport means the import payload is not a persona list.
	ErrTypeInvalidImport
	// ErrTypeInvalidDraft means a create request is missing required fields.
	ErrTypeInvalidDraft
)

// RegistryError is the error type returned by Registry operations.
type RegistryError struct {
	Type    ErrorType
	ID      string
	Message string
	Cause   error
}

func (e *RegistryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("persona %s: %s", e.ID, e.Message)
	}
	return e.Message
}

func (e *RegistryError) Unwrap() error { return e.Cause }

// Is matches RegistryErrors by Type so callers can use errors.Is with
// the sentinel values below.
func (e *RegistryError) Is(target error) bool {
	t, ok := target.(*RegistryError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

var (
	ErrBuiltinDelete = &RegistryError{Type: ErrTypeBuiltinDelete, Message: "built-in personas cannot be deleted"}
	ErrInvalidImport = &RegistryError{Type: ErrTypeInvalidImport, Message: "Invalid personas file format"}
	ErrInvalidDraft  = &RegistryError{Type: ErrTypeInvalidDraft, Message: "persona name and prompt are required"}
)
