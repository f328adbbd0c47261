// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the zaviye core.
//
// # Key Types
//
//   - Message: a single immutable chat message (id, role, content, timestamp)
//   - Role: the sender of a message (user or assistant)
//   - ModelInfo: one entry of the fixed generation-model table
//
// A conversation is an ordered []Message owned by its persona's chat
// session; insertion order equals chronological order. The model table maps
// each selectable model to its display name and client-side RPM throttle
// capacity.
package model
