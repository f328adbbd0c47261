// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit enforces per-model request pacing with a sliding
// one-minute window, mirroring the free-tier RPM quotas of the upstream
// provider so requests are rejected locally before they burn quota.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/zaviye/internal/model"
)

// Window is the sliding interval over which requests are counted.
const Window = time.Minute

// Result reports the outcome of a reservation attempt.
type Result struct {
	// Throttled is true when the request must not be dispatched.
	Throttled bool
	// WaitSeconds is how long until a slot frees up. Zero unless Throttled.
	WaitSeconds int
}

// Config controls limiter behavior.
type Config struct {
	// Window overrides the sliding window. Defaults to one minute.
	Window time.Duration

	// RPM resolves a model id to its requests-per-minute cap. Unknown
	// models fail closed. Defaults to the built-in model table.
	RPM func(modelID string) (int, bool)

	// OnCountdown, when set, is invoked once per second with the
	// remaining wait while a throttle countdown is running, ending
	// with a call at zero.
	OnCountdown func(seconds int)
}

// DefaultConfig returns a limiter configuration backed by the built-in
// model table.
func DefaultConfig() Config {
	return Config{
		Window: Window,
		RPM: func(modelID string) (int, bool) {
			m, ok := model.ModelByID(modelID)
			if !ok {
				return 0, false
			}
			return m.RPM, true
		},
	}
}

// Limiter tracks request timestamps per model and owns the throttle
// countdown. All methods are safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	window      time.Duration
	rpm         func(string) (int, bool)
	onCountdown func(int)
	log         *zap.Logger

	timestamps map[string][]time.Time
	seconds    int
	cancel     chan struct{}

	now func() time.Time
}

// New returns a limiter with the given configuration. Zero-valued
// fields fall back to DefaultConfig.
func New(cfg Config, log *zap.Logger) *Limiter {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.RPM == nil {
		cfg.RPM = def.RPM
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Limiter{
		window:      cfg.Window,
		rpm:         cfg.RPM,
		onCountdown: cfg.OnCountdown,
		log:         log,
		timestamps:  make(map[string][]time.Time),
		now:         time.Now,
	}
}

// CheckAndReserve decides whether a request for modelID may be sent now.
// On success the request is recorded against the window. On throttle
// nothing is recorded and a countdown starts; the returned WaitSeconds
// is rounded up to whole seconds. Unknown models fail closed.
func (l *Limiter) CheckAndReserve(modelID string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rpm, ok := l.rpm(modelID)
	if !ok {
		l.log.Warn("rate check for unknown model", zap.String("model", modelID))
		return Result{Throttled: true}, &LimitError{
			Type:    ErrTypeUnknownModel,
			ModelID: modelID,
			Message: "unknown model",
		}
	}

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.timestamps[modelID][:0]
	for _, ts := range l.timestamps[modelID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	l.timestamps[modelID] = recent

	if len(recent) >= rpm {
		oldest := recent[0]
		wait := int(math.Ceil((l.window - now.Sub(oldest)).Seconds()))
		if wait < 1 {
			wait = 1
		}
		l.startCountdownLocked(wait)
		l.log.Debug("request throttled",
			zap.String("model", modelID),
			zap.Int("wait_seconds", wait))
		return Result{Throttled: true, WaitSeconds: wait}, nil
	}

	l.timestamps[modelID] = append(recent, now)
	return Result{}, nil
}

// ThrottleSeconds returns the remaining countdown, zero when idle.
func (l *Limiter) ThrottleSeconds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seconds
}

// startCountdownLocked replaces any running countdown with a fresh one.
func (l *Limiter) startCountdownLocked(seconds int) {
	if l.cancel != nil {
		close(l.cancel)
	}
	cancel := make(chan struct{})
	l.cancel = cancel
	l.seconds = seconds
	if l.onCountdown != nil {
		go l.onCountdown(seconds)
	}
	go l.runCountdown(cancel)
}

func (l *Limiter) runCountdown(cancel chan struct{}) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-tick.C:
			l.mu.Lock()
			if l.cancel != cancel {
				l.mu.Unlock()
				return
			}
			if l.seconds > 0 {
				l.seconds--
			}
			remaining := l.seconds
			cb := l.onCountdown
			done := remaining == 0
			if done {
				l.cancel = nil
			}
			l.mu.Unlock()

			if cb != nil {
				cb(remaining)
			}
			if done {
				return
			}
		}
	}
}

// Stop cancels any running countdown and clears the remaining wait.
// The limiter stays usable afterwards.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		close(l.cancel)
		l.cancel = nil
	}
	l.seconds = 0
}
