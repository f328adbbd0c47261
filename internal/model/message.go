// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and models.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jeranaias/zaviye/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are immutable once created; a conversation is an ordered
// sequence of messages where insertion order equals chronological order.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// NewMessage creates a new message with a generated ID and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// Preview returns a truncated preview of the message content.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Content, maxLen)
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// =============================================================================
// CONVERSATION HELPERS
// =============================================================================

// IsValidContent reports whether content is sendable
// (not empty or whitespace-only).
func IsValidContent(content string) bool {
	return strings.TrimSpace(content) != ""
}

// LastUserMessage returns the most recent user message, or false if none.
func LastUserMessage(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i], true
		}
	}
	return Message{}, false
}

// RemoveByID returns messages with the message matching id removed.
func RemoveByID(messages []Message, id string) []Message {
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.ID != id {
			out = append(out, msg)
		}
	}
	return out
}

// RemoveAssistantAfter returns messages with assistant messages at or after
// the given timestamp removed. Used when regenerating a response.
func RemoveAssistantAfter(messages []Message, timestamp int64) []Message {
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleAssistant && msg.Timestamp >= timestamp {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
