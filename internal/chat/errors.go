// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
)

// ErrorType classifies session failures.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeEmptyMessage means the content was empty or whitespace-only.
	ErrTypeEmptyMessage
	// ErrTypeThrottled means a rate-limit countdown blocks the send.
	ErrTypeThrottled
	// ErrTypeNoMessageToRegenerate means the history has no user message.
	ErrTypeNoMessageToRegenerate
	// ErrTypePersonaNotFound means the session's persona id is unknown.
	ErrTypePersonaNotFound
)

// SessionError is the error type returned by session operations.
type SessionError struct {
	Type ErrorType
	// Seconds is the remaining wait for ErrTypeThrottled.
	Seconds int
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Type == ErrTypeThrottled {
		return fmt.Sprintf("Rate limit reached. Please wait %d seconds.", e.Seconds)
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *SessionError) Unwrap() error { return e.Cause }

// Is matches SessionErrors by Type.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinel errors for easy checking.
var (
	ErrEmptyMessage          = &SessionError{Type: ErrTypeEmptyMessage, Message: "message content is empty"}
	ErrThrottled             = &SessionError{Type: ErrTypeThrottled, Message: "rate limit reached"}
	ErrNoMessageToRegenerate = &SessionError{Type: ErrTypeNoMessageToRegenerate, Message: "no user message to regenerate from"}
	ErrPersonaNotFound       = &SessionError{Type: ErrTypePersonaNotFound, Message: "persona not found"}
)

// NewThrottledError builds a throttle rejection carrying the wait time.
func NewThrottledError(seconds int) *SessionError {
	return &SessionError{Type: ErrTypeThrottled, Seconds: seconds}
}

// IsThrottled reports whether err is a throttle rejection.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
