// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package zaviye is the embedding surface for the chat core. A host
// application opens a Client once, drives conversations through it, and
// renders whatever it gets back. There is no process boundary here: the
// Client lives inside the host and persists through the configured
// store backend.
package zaviye

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/app"
	"github.com/jeranaias/zaviye/internal/backup"
	"github.com/jeranaias/zaviye/internal/config"
	"github.com/jeranaias/zaviye/internal/logging"
	"github.com/jeranaias/zaviye/internal/model"
	"github.com/jeranaias/zaviye/internal/persona"
)

// Re-exported data types. Hosts work with these directly; the packages
// defining them stay internal.
type (
	Message      = model.Message
	ModelInfo    = model.ModelInfo
	Persona      = persona.Persona
	PersonaDraft = persona.Draft
	PersonaEdit  = persona.Update
)

// DefaultModelID is the model used until the host picks another one.
const DefaultModelID = model.DefaultModelID

// Models lists the selectable models with their throttle capacities.
func Models() []ModelInfo { return model.Models() }

// Options controls how Open builds the client. The zero value loads
// config.toml from the default directory and logs to the configured
// log directory.
type Options struct {
	// ConfigPath overrides the configuration file location.
	ConfigPath string

	// Logger replaces the file logger. Useful for tests and for hosts
	// that already own a zap tree.
	Logger *zap.Logger

	// WatchConfig reloads the configuration file when it changes on
	// disk. Generation settings take effect immediately; the storage
	// backend does not switch at runtime.
	WatchConfig bool
}

// Client is the running chat core.
type Client struct {
	app      *app.App
	watcher  *config.Watcher
	closeLog func()
}

// Open loads configuration, sets up logging and storage, and returns a
// ready Client. The caller must Close it.
func Open(opts Options) (*Client, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	var closeLog func()
	if log == nil {
		logDir, err := cfg.LogDir()
		if err != nil {
			return nil, err
		}
		log, closeLog, err = logging.New(logging.Options{
			Dir:        logDir,
			Level:      cfg.Logging.Level,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
	}

	a, err := app.New(cfg, log)
	if err != nil {
		if closeLog != nil {
			closeLog()
		}
		return nil, err
	}

	c := &Client{app: a, closeLog: closeLog}
	if opts.WatchConfig {
		path := opts.ConfigPath
		if path == "" {
			if path, err = config.Path(); err != nil {
				c.Close()
				return nil, err
			}
		}
		w, err := config.NewWatcher(path, a.ApplyConfig, log)
		if err != nil {
			c.Close()
			return nil, err
		}
		if err := w.Watch(); err != nil {
			c.Close()
			return nil, err
		}
		c.watcher = w
	}
	return c, nil
}

// Close stops in-flight generations, the config watcher, and releases
// the store.
func (c *Client) Close() error {
	if c.watcher != nil {
		c.watcher.Close()
	}
	err := c.app.Close()
	if c.closeLog != nil {
		c.closeLog()
	}
	return err
}

// ====== CONVERSATIONS ======

// Send submits a user message to the persona's conversation and returns
// the assistant reply. A Send while another generation is in flight
// stops the earlier one. A stopped Send returns a zero Message and nil
// error.
func (c *Client) Send(ctx context.Context, personaID, content string) (Message, error) {
	s, err := c.app.Engine.Session(personaID)
	if err != nil {
		return Message{}, err
	}
	if err := c.app.Registry.Select(personaID); err != nil {
		return Message{}, err
	}
	return s.Send(ctx, content)
}

// Regenerate discards the last assistant reply and produces a new one
// from the same user message.
func (c *Client) Regenerate(ctx context.Context, personaID string) (Message, error) {
	s, err := c.app.Engine.Session(personaID)
	if err != nil {
		return Message{}, err
	}
	return s.Regenerate(ctx)
}

// Stop cancels the persona's in-flight generation, if any.
func (c *Client) Stop(personaID string) {
	if s, err := c.app.Engine.Session(personaID); err == nil {
		s.Stop()
	}
}

// History returns the persona's conversation so far.
func (c *Client) History(personaID string) ([]Message, error) {
	s, err := c.app.Engine.Session(personaID)
	if err != nil {
		return nil, err
	}
	return s.Messages(), nil
}

// HasStarted reports whether the persona's conversation has ever seen a
// user message. Hosts show the intro greeting until it has.
func (c *Client) HasStarted(personaID string) (bool, error) {
	s, err := c.app.Engine.Session(personaID)
	if err != nil {
		return false, err
	}
	return s.HasStarted(), nil
}

// ClearHistory wipes one persona's conversation.
func (c *Client) ClearHistory(personaID string) error {
	s, err := c.app.Engine.Session(personaID)
	if err != nil {
		return err
	}
	s.ClearHistory()
	return nil
}

// ClearAllHistories wipes every persona's conversation.
func (c *Client) ClearAllHistories() {
	c.app.Engine.ClearAllHistories()
}

// ThrottleSeconds returns the seconds remaining on the active rate
// limit countdown, zero when sending is allowed.
func (c *Client) ThrottleSeconds() int {
	return c.app.Limiter.ThrottleSeconds()
}

// ====== PERSONAS ======

// Personas lists all personas, most recently used first.
func (c *Client) Personas() []Persona { return c.app.Registry.All() }

// GetPersona looks a persona up by id.
func (c *Client) GetPersona(id string) (Persona, bool) { return c.app.Registry.Get(id) }

// CreatePersona adds a custom persona and returns it.
func (c *Client) CreatePersona(d PersonaDraft) (Persona, error) {
	return c.app.Registry.Create(d)
}

// UpdatePersona edits a persona. Editing a built-in records an override
// on top of the shipped definition.
func (c *Client) UpdatePersona(id string, u PersonaEdit) error {
	return c.app.Registry.Update(id, u)
}

// DeletePersona removes a custom persona. Built-ins cannot be deleted.
func (c *Client) DeletePersona(id string) error { return c.app.Registry.Delete(id) }

// ResetPersona drops a built-in's override, restoring the shipped
// definition.
func (c *Client) ResetPersona(id string) error { return c.app.Registry.ResetToDefault(id) }

// ImportPersonas scans a personas payload and merges it in. With
// overwrite false, personas whose id already exists are skipped.
func (c *Client) ImportPersonas(data []byte, overwrite bool) (added, updated int, err error) {
	incoming, _, err := c.app.Registry.ScanImport(data)
	if err != nil {
		return 0, 0, err
	}
	return c.app.Registry.ImportCustom(incoming, overwrite)
}

// ScanPersonaImport inspects a personas payload without committing it,
// returning how many records it holds and how many collide with
// existing ids. Hosts use this to ask about overwriting first.
func (c *Client) ScanPersonaImport(data []byte) (total, duplicates int, err error) {
	incoming, dups, err := c.app.Registry.ScanImport(data)
	if err != nil {
		return 0, 0, err
	}
	return len(incoming), dups, nil
}

// ExportPersonas returns the custom personas and built-in overrides as
// an importable JSON document.
func (c *Client) ExportPersonas() ([]byte, error) {
	personas := c.app.Registry.ExportCustom()
	if personas == nil {
		personas = []Persona{}
	}
	return json.MarshalIndent(personas, "", "  ")
}

// ====== MODEL SELECTION ======

// GlobalModel returns the default model for personas without an
// override.
func (c *Client) GlobalModel() string { return c.app.GlobalModel() }

// SetGlobalModel changes the default model. Unknown ids are refused.
func (c *Client) SetGlobalModel(id string) error { return c.app.SetGlobalModel(id) }

// ====== BACKUP ======

// ExportBackup serializes the whole application state.
func (c *Client) ExportBackup() ([]byte, error) { return c.app.Backup.ExportJSON() }

// ImportBackup restores a backup, replacing personas and histories and
// refreshing open conversations.
func (c *Client) ImportBackup(data []byte) error { return c.app.ImportBackup(data) }

// ResetDefaults restores the shipped personas and clears the model
// choice. Conversations are kept.
func (c *Client) ResetDefaults() error { return c.app.Backup.ResetDefaults() }

// ClearAllData irrecoverably removes everything this client ever
// persisted.
func (c *Client) ClearAllData() { c.app.Backup.ClearAllLocalData() }

// BackupFilename names a backup download for the given moment.
func BackupFilename(now time.Time) string { return backup.BackupFilename(now) }

// PersonasFilename names a persona export for the given moment.
func PersonasFilename(now time.Time) string { return backup.PersonasFilename(now) }
