// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/persona"
	"github.com/jeranaias/zaviye/internal/ratelimit"
	"github.com/jeranaias/zaviye/internal/store"
)

// Engine hands out one Session per persona and caches them so history
// loads from the store only once per persona. Safe for concurrent use.
type Engine struct {
	store       *store.Store
	registry    *persona.Registry
	limiter     *ratelimit.Limiter
	gen         Generator
	globalModel func() string
	log         *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewEngine wires the conversation engine. globalModel supplies the
// current default model id on each call so model switches take effect
// without rebuilding sessions.
func NewEngine(st *store.Store, reg *persona.Registry, lim *ratelimit.Limiter, gen Generator, globalModel func() string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:       st,
		registry:    reg,
		limiter:     lim,
		gen:         gen,
		globalModel: globalModel,
		log:         log,
		sessions:    make(map[string]*Session),
	}
}

// Session returns the conversation for personaID, creating it on first
// use. Unknown personas are refused.
func (e *Engine) Session(personaID string) (*Session, error) {
	if _, ok := e.registry.Get(personaID); !ok {
		return nil, &SessionError{Type: ErrTypePersonaNotFound, Message: "persona not found: " + personaID}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[personaID]; ok {
		return s, nil
	}
	s := newSession(personaID, e.store, e.registry, e.limiter, e.gen, e.globalModel, e.log)
	e.sessions[personaID] = s
	return s, nil
}

// DropSession stops and forgets the cached session for personaID. The
// next Session call reloads it from the store.
func (e *Engine) DropSession(personaID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[personaID]; ok {
		s.Stop()
		delete(e.sessions, personaID)
	}
}

// Reload re-reads every cached session's history from the store. Used
// after a backup import rewrites histories underneath the engine.
func (e *Engine) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.sessions {
		s.reload()
	}
}

// ClearAllHistories wipes every cached session's conversation and the
// persisted history of any persona not currently cached.
func (e *Engine) ClearAllHistories() {
	e.mu.Lock()
	sessions := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()

	for _, s := range sessions {
		s.ClearHistory()
	}
	for _, p := range e.registry.All() {
		e.store.Remove(store.ChatMessagesKey(p.ID))
		e.store.Remove(store.ChatStartedKey(p.ID))
	}
}

// Close stops all in-flight generations and tears down the rate
// limiter's countdown. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.sessions {
		s.Stop()
	}
	e.sessions = make(map[string]*Session)
	e.limiter.Stop()
}
