// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backup implements whole-application export and import: the
// backup document bundles the global model choice, the custom persona
// list, and every non-empty chat history.
package backup

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/model"
	"github.com/jeranaias/zaviye/internal/persona"
	"github.com/jeranaias/zaviye/internal/store"
)

// Document is the portable backup format. GlobalModel may be empty when
// the user never picked a model.
type Document struct {
	GlobalModel string                     `json:"globalModel"`
	Personas    []persona.Persona          `json:"personas"`
	Histories   map[string][]model.Message `json:"histories"`
}

// InvalidFormatError rejects a document that is not a backup.
type InvalidFormatError struct {
	Message string
	Cause   error
}

func (e *InvalidFormatError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *InvalidFormatError) Unwrap() error { return e.Cause }

// Is matches any InvalidFormatError.
func (e *InvalidFormatError) Is(target error) bool {
	_, ok := target.(*InvalidFormatError)
	return ok
}

// ErrInvalidFormat is the sentinel for errors.Is checks.
var ErrInvalidFormat = &InvalidFormatError{Message: "Invalid backup file format."}

// Coordinator runs export and import against the store and registry.
type Coordinator struct {
	store    *store.Store
	registry *persona.Registry
	log      *zap.Logger
}

// New returns a backup coordinator.
func New(st *store.Store, reg *persona.Registry, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{store: st, registry: reg, log: log}
}

// ExportAll collects the current application state into a Document.
// Histories are included only for personas with at least one persisted
// message.
func (c *Coordinator) ExportAll() Document {
	doc := Document{
		GlobalModel: store.Get(c.store, store.KeyGlobalModel, ""),
		Personas:    c.registry.ExportCustom(),
		Histories:   make(map[string][]model.Message),
	}
	if doc.Personas == nil {
		doc.Personas = []persona.Persona{}
	}
	for _, p := range c.registry.All() {
		history := store.Get(c.store, store.ChatMessagesKey(p.ID), []model.Message(nil))
		if len(history) > 0 {
			doc.Histories[p.ID] = history
		}
	}
	return doc
}

// ExportJSON serializes the backup document with indentation, matching
// the layout users expect from hand-inspectable backups.
func (c *Coordinator) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(c.ExportAll(), "", "  ")
}

// ImportAll replaces application state from a backup payload. The
// payload must carry both "personas" and "histories" keys; anything
// else is rejected before any write happens. The global model is only
// written when present. Every imported history is marked started so the
// conversation resumes instead of greeting the user afresh.
//
// In-memory caches (persona registry excepted) are not refreshed here;
// the caller reloads the engine afterwards.
func (c *Coordinator) ImportAll(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &InvalidFormatError{Message: "Invalid backup file format.", Cause: err}
	}
	personasRaw, hasPersonas := raw["personas"]
	historiesRaw, hasHistories := raw["histories"]
	if !hasPersonas || !hasHistories {
		return ErrInvalidFormat
	}

	var personas []persona.Persona
	if err := json.Unmarshal(personasRaw, &personas); err != nil {
		return &InvalidFormatError{Message: "Invalid backup file format.", Cause: err}
	}
	var histories map[string][]model.Message
	if err := json.Unmarshal(historiesRaw, &histories); err != nil {
		return &InvalidFormatError{Message: "Invalid backup file format.", Cause: err}
	}

	var globalModel string
	if gm, ok := raw["globalModel"]; ok {
		// Tolerate null; anything else must be a string.
		if err := json.Unmarshal(gm, &globalModel); err != nil && string(gm) != "null" {
			return &InvalidFormatError{Message: "Invalid backup file format.", Cause: err}
		}
	}

	if globalModel != "" {
		if err := c.store.Set(store.KeyGlobalModel, globalModel); err != nil {
			return err
		}
	}
	if err := c.registry.ReplaceCustom(personas); err != nil {
		return err
	}
	for id, history := range histories {
		if err := c.store.Set(store.ChatMessagesKey(id), history); err != nil {
			return err
		}
		if err := c.store.Set(store.ChatStartedKey(id), true); err != nil {
			return err
		}
	}

	c.log.Info("backup imported",
		zap.Int("personas", len(personas)),
		zap.Int("histories", len(histories)))
	return nil
}

// ClearAllLocalData removes every namespaced key, irrecoverably.
func (c *Coordinator) ClearAllLocalData() {
	c.store.ClearAll()
}

// ResetDefaults discards custom personas, built-in overrides, and the
// global model choice. Chat histories are kept.
func (c *Coordinator) ResetDefaults() error {
	if err := c.registry.ReplaceCustom(nil); err != nil {
		return err
	}
	c.store.Remove(store.KeyGlobalModel)
	return nil
}

// BackupFilename names a full-backup download, timestamped to the second.
func BackupFilename(now time.Time) string {
	return "zaviye-backup-" + now.UTC().Format(time.RFC3339) + ".json"
}

// PersonasFilename names a persona-only export.
func PersonasFilename(now time.Time) string {
	return "zaviye-personas-" + now.UTC().Format(time.RFC3339) + ".json"
}
