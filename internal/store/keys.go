// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

// Prefix namespaces every key the application writes, so "clear all app
// data" never touches unrelated storage sharing the same medium.
const Prefix = "zaviye-"

// Well-known keys (already namespaced by the store itself).
const (
	// KeyCustomPersonas holds the JSON array of user-owned persona records.
	KeyCustomPersonas = "custom-personas"

	// KeyGlobalModel holds the globally selected default model id.
	KeyGlobalModel = "global-model"
)

// ChatMessagesKey returns the key holding the message history for a persona.
func ChatMessagesKey(personaID string) string {
	return personaID + "-messages"
}

// ChatStartedKey returns the key holding the started flag for a persona.
func ChatStartedKey(personaID string) string {
	return personaID + "-started"
}
