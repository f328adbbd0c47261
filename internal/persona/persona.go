// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona provides the persona registry for the zaviye core.
package persona

// Persona is a named system-prompt configuration controlling one
// independent conversation thread, optionally bound to its own model.
//
// The struct carries serializable fields only. Presentation-layer
// decorations (icons, derived display strings) belong to the UI boundary
// and are never persisted.
type Persona struct {
	// ID is unique and immutable once created.
	ID string `json:"id"`

	Name   string `json:"name"`
	Prompt string `json:"prompt"`

	// IsDefault marks a built-in persona. Built-ins cannot be deleted,
	// only overridden or reset.
	IsDefault bool `json:"isDefault"`

	// Model overrides the global default model when set.
	Model string `json:"model,omitempty"`

	Placeholder  string   `json:"placeholder,omitempty"`
	IntroMessage string   `json:"introMessage,omitempty"`
	Description  string   `json:"description,omitempty"`
	DemoPrompts  []string `json:"demoPrompts,omitempty"`

	// LastUsed is the recency sort key, epoch milliseconds. Zero means
	// never used; such personas sort last.
	LastUsed int64 `json:"lastUsed,omitempty"`
}

// Draft holds the caller-supplied fields for creating a new persona.
type Draft struct {
	Name   string
	Prompt string
}

// Update holds a partial persona mutation. Nil fields are left unchanged.
// ID and IsDefault are not updatable.
type Update struct {
	Name        *string
	Prompt      *string
	Placeholder *string
	Model       *string
	LastUsed    *int64
}

// apply shallow-merges u into p.
func (u Update) apply(p *Persona) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Prompt != nil {
		p.Prompt = *u.Prompt
	}
	if u.Placeholder != nil {
		p.Placeholder = *u.Placeholder
	}
	if u.Model != nil {
		p.Model = *u.Model
	}
	if u.LastUsed != nil {
		p.LastUsed = *u.LastUsed
	}
}
