// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and models.
package model

// DefaultModelID is the model used when no global or per-persona override
// is configured.
const DefaultModelID = "gemini-2.5-flash"

// ModelInfo describes one selectable generation model.
type ModelInfo struct {
	// ID is the wire identifier sent to the generation service.
	ID string

	// Name is the human-readable display name.
	Name string

	// RPM is the client-side requests-per-minute throttle capacity.
	RPM int

	// Provider is the upstream provider name.
	Provider string
}

// models is the fixed table of selectable models, in display order.
var models = []ModelInfo{
	{
		ID:       "gemini-2.5-pro",
		Name:     "Gemini 2.5 Pro",
		RPM:      2,
		Provider: "Google",
	},
	{
		ID:       "gemini-2.5-flash",
		Name:     "Gemini 2.5 Flash",
		RPM:      4,
		Provider: "Google",
	},
	{
		ID:       "gemini-2.5-flash-lite-preview-06-17",
		Name:     "Gemini 2.5 Flash-Lite (Preview)",
		RPM:      7,
		Provider: "Google",
	},
	{
		ID:       "gemini-2.0-flash",
		Name:     "Gemini 2.0 Flash",
		RPM:      7,
		Provider: "Google",
	},
	{
		ID:       "gemini-2.0-flash-lite",
		Name:     "Gemini 2.0 Flash-Lite",
		RPM:      10,
		Provider: "Google",
	},
}

// Models returns the full model table in display order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(models))
	copy(out, models)
	return out
}

// ModelByID looks up a model by its wire identifier.
func ModelByID(id string) (ModelInfo, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// IsKnownModel reports whether id is in the model table.
func IsKnownModel(id string) bool {
	_, ok := ModelByID(id)
	return ok
}
