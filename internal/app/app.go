// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the zaviye components into one running application:
// store, persona registry, rate limiter, generation client, chat engine,
// and backup coordinator.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/backup"
	"github.com/jeranaias/zaviye/internal/chat"
	"github.com/jeranaias/zaviye/internal/config"
	"github.com/jeranaias/zaviye/internal/genai"
	"github.com/jeranaias/zaviye/internal/model"
	"github.com/jeranaias/zaviye/internal/persona"
	"github.com/jeranaias/zaviye/internal/ratelimit"
	"github.com/jeranaias/zaviye/internal/store"
)

// switchableGenerator lets a config reload swap the generation client
// without rebuilding the engine and its cached sessions.
type switchableGenerator struct {
	mu    sync.RWMutex
	inner chat.Generator
}

func (g *switchableGenerator) Generate(ctx context.Context, p genai.Params) (string, error) {
	g.mu.RLock()
	inner := g.inner
	g.mu.RUnlock()
	return inner.Generate(ctx, p)
}

func (g *switchableGenerator) swap(inner chat.Generator) {
	g.mu.Lock()
	g.inner = inner
	g.mu.Unlock()
}

// App owns the application components and their lifecycles.
type App struct {
	log *zap.Logger

	store    *store.Store
	Registry *persona.Registry
	Limiter  *ratelimit.Limiter
	Engine   *chat.Engine
	Backup   *backup.Coordinator

	gen *switchableGenerator

	mu  sync.RWMutex
	cfg *config.Config
}

// New builds the application from a configuration. The store backend is
// selected by cfg.Storage.Backend.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	st := store.New(backend, log)
	reg := persona.NewRegistry(st, log)
	lim := ratelimit.New(ratelimit.DefaultConfig(), log)

	a := &App{
		log:      log,
		store:    st,
		Registry: reg,
		Limiter:  lim,
		cfg:      cfg,
		gen:      &switchableGenerator{inner: newClient(cfg, log)},
	}
	a.Engine = chat.NewEngine(st, reg, lim, a.gen, a.GlobalModel, log)
	a.Backup = backup.New(st, reg, log)
	return a, nil
}

func newBackend(cfg *config.Config) (store.Backend, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "memory":
		return store.NewMemoryBackend(), nil
	case "sqlite":
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteBackend(filepath.Join(dir, "zaviye.db"))
	case "file", "":
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, err
		}
		return store.NewFileBackend(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newClient(cfg *config.Config, log *zap.Logger) *genai.Client {
	return genai.NewClientWithConfig(&genai.ClientConfig{
		BaseURL:        cfg.Generation.BaseURL,
		Timeout:        cfg.Generation.GenTimeout(),
		MaxRetries:     cfg.Generation.MaxRetries,
		RetryDelay:     cfg.Generation.RetryDelay(),
		RequestsPerSec: cfg.Generation.RequestsPerSec,
	}, log)
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// GlobalModel returns the user's chosen default model, falling back to
// the configured default when none was ever picked.
func (a *App) GlobalModel() string {
	fallback := a.Config().DefaultModel
	m := store.Get(a.store, store.KeyGlobalModel, fallback)
	if !model.IsKnownModel(m) {
		return fallback
	}
	return m
}

// SetGlobalModel persists a new default model. Unknown models are refused.
func (a *App) SetGlobalModel(id string) error {
	if !model.IsKnownModel(id) {
		return fmt.Errorf("unknown model %q", id)
	}
	return a.store.Set(store.KeyGlobalModel, id)
}

// ApplyConfig takes a reloaded configuration into use. The generation
// client is rebuilt; the store backend is not switched at runtime.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	a.gen.swap(newClient(cfg, a.log))
	a.log.Info("configuration applied", zap.String("model", cfg.DefaultModel))
}

// ImportBackup restores a backup document and refreshes the in-memory
// engine state.
func (a *App) ImportBackup(data []byte) error {
	if err := a.Backup.ImportAll(data); err != nil {
		return err
	}
	a.Engine.Reload()
	return nil
}

// Close shuts the application down: in-flight generations are cancelled,
// the limiter countdown stops, and the store is released.
func (a *App) Close() error {
	a.Engine.Close()
	return a.store.Close()
}
