// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/store"
)

// ============================================================================
// REGISTRY
// ============================================================================

// Registry manages the persona collection. Built-ins live in code; only
// custom personas and built-in overrides are persisted. All methods are
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	store  *store.Store
	log    *zap.Logger
	custom []Persona
}

// NewRegistry loads the persisted custom personas and returns a registry.
func NewRegistry(st *store.Store, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	custom := store.Get(st, store.KeyCustomPersonas, []Persona(nil))
	return &Registry{
		store:  st,
		log:    log,
		custom: custom,
	}
}

// persist writes the custom persona list. Callers hold the write lock.
func (r *Registry) persist() error {
	return r.store.Set(store.KeyCustomPersonas, r.custom)
}

// mergedBuiltin applies a stored override to its built-in base. Name,
// prompt, and placeholder only take effect when non-empty; model and
// lastUsed always come from the override.
func mergedBuiltin(base Persona, override Persona) Persona {
	out := clonePersona(base)
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Prompt != "" {
		out.Prompt = override.Prompt
	}
	if override.Placeholder != "" {
		out.Placeholder = override.Placeholder
	}
	out.Model = override.Model
	out.LastUsed = override.LastUsed
	return out
}

// All returns every persona, built-in overrides applied, sorted most
// recently used first. Personas never used keep declaration order.
func (r *Registry) All() []Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allLocked()
}

func (r *Registry) allLocked() []Persona {
	overrides := make(map[string]Persona, len(r.custom))
	for _, p := range r.custom {
		overrides[p.ID] = p
	}

	merged := make([]Persona, 0, len(builtins)+len(r.custom))
	for _, b := range builtins {
		if ov, ok := overrides[b.ID]; ok {
			merged = append(merged, mergedBuiltin(b, ov))
		} else {
			merged = append(merged, clonePersona(b))
		}
	}
	for _, p := range r.custom {
		if !IsBuiltin(p.ID) {
			merged = append(merged, clonePersona(p))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].LastUsed > merged[j].LastUsed
	})
	return merged
}

// Get returns the persona with the given id, overrides applied.
func (r *Registry) Get(id string) (Persona, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.allLocked() {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// Create adds a new custom persona and returns it. The name and prompt
// are required; the new persona is stamped as just used so it sorts to
// the front.
func (r *Registry) Create(d Draft) (Persona, error) {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Prompt) == "" {
		return Persona{}, ErrInvalidDraft
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := Persona{
		ID:       uuid.NewString(),
		Name:     d.Name,
		Prompt:   d.Prompt,
		LastUsed: time.Now().UnixMilli(),
	}
	r.custom = append(r.custom, p)
	if err := r.persist(); err != nil {
		r.custom = r.custom[:len(r.custom)-1]
		return Persona{}, err
	}
	r.log.Debug("persona created", zap.String("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// Update applies a partial mutation. Updating a built-in that has no
// stored override synthesizes one; updating an unknown id is a no-op,
// like Delete.
func (r *Registry) Update(id string, u Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.custom {
		if r.custom[i].ID == id {
			u.apply(&r.custom[i])
			return r.persist()
		}
	}

	base, ok := builtinByID(id)
	if !ok {
		return nil
	}

	override := Persona{
		ID:        id,
		Name:      base.Name,
		Prompt:    base.Prompt,
		IsDefault: true,
	}
	u.apply(&override)
	r.custom = append(r.custom, override)
	if err := r.persist(); err != nil {
		r.custom = r.custom[:len(r.custom)-1]
		return err
	}
	return nil
}

// Delete removes a custom persona. Built-ins cannot be deleted; deleting
// an unknown id is a no-op.
func (r *Registry) Delete(id string) error {
	if IsBuiltin(id) {
		return &RegistryError{Type: ErrTypeBuiltinDelete, ID: id, Message: "built-in personas cannot be deleted"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.custom[:0]
	removed := false
	for _, p := range r.custom {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return nil
	}
	r.custom = kept
	return r.persist()
}

// Select stamps the persona as just used so it sorts to the front of All.
func (r *Registry) Select(id string) error {
	now := time.Now().UnixMilli()
	return r.Update(id, Update{LastUsed: &now})
}

// ResetToDefault discards any stored override for a built-in persona,
// restoring its shipped name, prompt, and placeholder. It is idempotent
// and a no-op for non-built-in ids.
func (r *Registry) ResetToDefault(id string) error {
	if !IsBuiltin(id) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.custom[:0]
	removed := false
	for _, p := range r.custom {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return nil
	}
	r.custom = kept
	return r.persist()
}

// ============================================================================
// IMPORT / EXPORT
// ============================================================================

// ExportCustom returns a copy of the persisted custom persona list. This
// is the raw stored form: built-in overrides appear as-is, not merged.
func (r *Registry) ExportCustom() []Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Persona, len(r.custom))
	for i, p := range r.custom {
		out[i] = clonePersona(p)
	}
	return out
}

// ReplaceCustom swaps the entire custom persona list. Used when
// restoring from a backup document.
func (r *Registry) ReplaceCustom(personas []Persona) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.custom
	r.custom = personas
	if err := r.persist(); err != nil {
		r.custom = prev
		return err
	}
	return nil
}

// ScanImport parses a persona import payload without applying it. It
// accepts either a bare JSON array of personas or an object with a
// "personas" array, and reports how many of the incoming ids collide
// with already-stored personas so the caller can ask about overwriting.
func (r *Registry) ScanImport(data []byte) (incoming []Persona, duplicates int, err error) {
	var list []Persona
	if err := json.Unmarshal(data, &list); err != nil {
		var wrapped struct {
			Personas []Persona `json:"personas"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.Personas == nil {
			return nil, 0, ErrInvalidImport
		}
		list = wrapped.Personas
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	existing := make(map[string]bool, len(r.custom))
	for _, p := range r.custom {
		existing[p.ID] = true
	}
	for _, p := range list {
		if existing[p.ID] {
			duplicates++
		}
	}
	return list, duplicates, nil
}

// ImportCustom merges incoming personas into the stored list. New ids
// are appended; ids that already exist are skipped unless overwrite is
// set, in which case the stored record is updated while keeping any
// fields the incoming record leaves empty.
func (r *Registry) ImportCustom(incoming []Persona, overwrite bool) (added, updated int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.custom
	index := make(map[string]int, len(r.custom))
	next := make([]Persona, len(r.custom))
	copy(next, r.custom)
	for i, p := range next {
		index[p.ID] = i
	}

	for _, in := range incoming {
		if i, ok := index[in.ID]; ok {
			if overwrite {
				next[i] = mergeImported(next[i], in)
				updated++
			}
			continue
		}
		index[in.ID] = len(next)
		next = append(next, clonePersona(in))
		added++
	}

	r.custom = next
	if err := r.persist(); err != nil {
		r.custom = prev
		return 0, 0, err
	}
	r.log.Info("personas imported",
		zap.Int("added", added),
		zap.Int("updated", updated),
		zap.Bool("overwrite", overwrite))
	return added, updated, nil
}

// mergeImported overlays incoming onto existing, keeping existing values
// for fields the incoming record leaves empty.
func mergeImported(existing, incoming Persona) Persona {
	out := clonePersona(incoming)
	if out.Name == "" {
		out.Name = existing.Name
	}
	if out.Prompt == "" {
		out.Prompt = existing.Prompt
	}
	if out.Placeholder == "" {
		out.Placeholder = existing.Placeholder
	}
	if out.Model == "" {
		out.Model = existing.Model
	}
	if out.IntroMessage == "" {
		out.IntroMessage = existing.IntroMessage
	}
	if out.Description == "" {
		out.Description = existing.Description
	}
	if out.DemoPrompts == nil {
		out.DemoPrompts = append([]string(nil), existing.DemoPrompts...)
	}
	if out.LastUsed == 0 {
		out.LastUsed = existing.LastUsed
	}
	return out
}
