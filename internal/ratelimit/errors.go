// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"errors"
	"fmt"
)

// ErrorType classifies limiter failures.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeUnknownModel means no RPM cap is known for the model, so
	// the limiter refuses the request rather than guessing.
	ErrTypeUnknownModel
)

// LimitError is the error type returned by Limiter operations.
type LimitError struct {
	Type    ErrorType
	ModelID string
	Message string
}

func (e *LimitError) Error() string {
	if e.ModelID != "" {
		return fmt.Sprintf("rate limit: %s: %s", e.ModelID, e.Message)
	}
	return "rate limit: " + e.Message
}

// Is matches LimitErrors by Type.
func (e *LimitError) Is(target error) bool {
	t, ok := target.(*LimitError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrUnknownModel is the sentinel for errors.Is checks.
var ErrUnknownModel = &LimitError{Type: ErrTypeUnknownModel, Message: "unknown model"}

// IsUnknownModel reports whether err is an unknown-model refusal.
func IsUnknownModel(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}
