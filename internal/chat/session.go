// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the per-persona conversation engine: sending,
// regenerating, stopping, and history persistence.
package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/genai"
	"github.com/jeranaias/zaviye/internal/model"
	"github.com/jeranaias/zaviye/internal/persona"
	"github.com/jeranaias/zaviye/internal/ratelimit"
	"github.com/jeranaias/zaviye/internal/store"
)

// Generator produces assistant text for a prompt. *genai.Client
// satisfies this; tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, p genai.Params) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, p genai.Params) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, p genai.Params) (string, error) {
	return f(ctx, p)
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one persona's conversation. Each persona has an
// independent history, started flag, and in-flight request slot.
//
// At most one send or regenerate runs at a time; starting a new one
// implicitly cancels the previous in-flight request. All methods are
// safe for concurrent use.
type Session struct {
	personaID string

	store       *store.Store
	registry    *persona.Registry
	limiter     *ratelimit.Limiter
	gen         Generator
	globalModel func() string
	log         *zap.Logger

	mu       sync.Mutex
	messages []model.Message
	started  bool
	cancel   context.CancelFunc
	seq      uint64
}

func newSession(personaID string, st *store.Store, reg *persona.Registry, lim *ratelimit.Limiter, gen Generator, globalModel func() string, log *zap.Logger) *Session {
	return &Session{
		personaID:   personaID,
		store:       st,
		registry:    reg,
		limiter:     lim,
		gen:         gen,
		globalModel: globalModel,
		log:         log.With(zap.String("persona", personaID)),
		messages:    store.Get(st, store.ChatMessagesKey(personaID), []model.Message(nil)),
		started:     store.Get(st, store.ChatStartedKey(personaID), false),
	}
}

// PersonaID returns the persona this session belongs to.
func (s *Session) PersonaID() string { return s.personaID }

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// HasStarted reports whether the conversation has ever had a message.
func (s *Session) HasStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// persistLocked writes the history and started flag. Store failures
// other than quota are swallowed by the store layer; quota errors are
// logged here and not propagated, a failed write never rolls back the
// in-memory state.
func (s *Session) persistLocked() {
	if err := s.store.Set(store.ChatMessagesKey(s.personaID), s.messages); err != nil {
		s.log.Warn("history write failed", zap.Error(err))
	}
	if err := s.store.Set(store.ChatStartedKey(s.personaID), s.started); err != nil {
		s.log.Warn("started-flag write failed", zap.Error(err))
	}
}

// resolve fetches the persona and its effective model: the persona's
// override when set, else the global default.
func (s *Session) resolve() (persona.Persona, string, error) {
	p, ok := s.registry.Get(s.personaID)
	if !ok {
		return persona.Persona{}, "", &SessionError{Type: ErrTypePersonaNotFound, Message: "persona not found: " + s.personaID}
	}
	if p.Model != "" {
		return p, p.Model, nil
	}
	return p, s.globalModel(), nil
}

// Send appends content as a user message, calls the generator, and
// appends the assistant reply. The user message is visible immediately;
// on failure it is rolled back. A cancelled generation rolls back
// silently with a nil error. The returned message is the assistant
// reply, zero-valued when the send was cancelled.
func (s *Session) Send(ctx context.Context, content string) (model.Message, error) {
	if !model.IsValidContent(content) {
		return model.Message{}, ErrEmptyMessage
	}
	if secs := s.limiter.ThrottleSeconds(); secs > 0 {
		return model.Message{}, NewThrottledError(secs)
	}

	p, modelID, err := s.resolve()
	if err != nil {
		return model.Message{}, err
	}

	res, err := s.limiter.CheckAndReserve(modelID)
	if err != nil {
		return model.Message{}, err
	}
	if res.Throttled {
		return model.Message{}, NewThrottledError(res.WaitSeconds)
	}

	userMsg := model.NewUserMessage(content)

	s.mu.Lock()
	s.cancelInFlightLocked()
	genCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	seq := s.seq

	s.messages = append(s.messages, userMsg)
	s.started = true
	s.persistLocked()
	s.mu.Unlock()

	text, genErr := s.gen.Generate(genCtx, genai.Params{
		SystemPrompt: p.Prompt,
		UserPrompt:   content,
		ModelID:      modelID,
	})
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCancelLocked(seq)

	if genErr != nil {
		s.messages = model.RemoveByID(s.messages, userMsg.ID)
		s.persistLocked()
		if genai.IsAborted(genErr) {
			s.log.Debug("send aborted", zap.String("model", modelID))
			return model.Message{}, nil
		}
		s.log.Warn("send failed", zap.String("model", modelID), zap.Error(genErr))
		return model.Message{}, genErr
	}

	reply := model.NewAssistantMessage(text)
	s.messages = append(s.messages, reply)
	s.persistLocked()
	return reply, nil
}

// Regenerate replays the most recent user message. Assistant replies
// from that message onward are discarded first; unlike Send, a failure
// does not remove the user message. A cancelled regeneration returns a
// nil error with a zero-valued message.
func (s *Session) Regenerate(ctx context.Context) (model.Message, error) {
	s.mu.Lock()
	lastUser, ok := model.LastUserMessage(s.messages)
	s.mu.Unlock()
	if !ok {
		return model.Message{}, ErrNoMessageToRegenerate
	}

	p, modelID, err := s.resolve()
	if err != nil {
		return model.Message{}, err
	}

	res, err := s.limiter.CheckAndReserve(modelID)
	if err != nil {
		return model.Message{}, err
	}
	if res.Throttled {
		return model.Message{}, NewThrottledError(res.WaitSeconds)
	}

	s.mu.Lock()
	s.cancelInFlightLocked()
	genCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	seq := s.seq

	s.messages = model.RemoveAssistantAfter(s.messages, lastUser.Timestamp)
	s.persistLocked()
	s.mu.Unlock()

	text, genErr := s.gen.Generate(genCtx, genai.Params{
		SystemPrompt: p.Prompt,
		UserPrompt:   lastUser.Content,
		ModelID:      modelID,
	})
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCancelLocked(seq)

	if genErr != nil {
		if genai.IsAborted(genErr) {
			s.log.Debug("regenerate aborted", zap.String("model", modelID))
			return model.Message{}, nil
		}
		s.log.Warn("regenerate failed", zap.String("model", modelID), zap.Error(genErr))
		return model.Message{}, genErr
	}

	reply := model.NewAssistantMessage(text)
	s.messages = append(s.messages, reply)
	s.persistLocked()
	return reply, nil
}

// Stop cancels any in-flight generation. Idle sessions ignore it.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelInFlightLocked()
}

// ClearHistory discards the conversation and its persisted state.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelInFlightLocked()
	s.messages = nil
	s.started = false
	s.store.Remove(store.ChatMessagesKey(s.personaID))
	s.store.Remove(store.ChatStartedKey(s.personaID))
}

// reload re-reads the persisted history, dropping in-memory state.
func (s *Session) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelInFlightLocked()
	s.messages = store.Get(s.store, store.ChatMessagesKey(s.personaID), []model.Message(nil))
	s.started = store.Get(s.store, store.ChatStartedKey(s.personaID), false)
}

func (s *Session) cancelInFlightLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// clearCancelLocked releases the in-flight slot, but only when it still
// belongs to the call identified by seq. A newer send may have replaced it.
func (s *Session) clearCancelLocked(seq uint64) {
	if s.seq == seq {
		s.cancel = nil
	}
}
