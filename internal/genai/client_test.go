// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClientWithConfig(&ClientConfig{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	}, zap.NewNop())
	return c, srv
}

func TestGenerateSuccess(t *testing.T) {
	var gotReq generateRequest
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Text: "hello there"})
	})

	text, err := c.Generate(context.Background(), Params{
		SystemPrompt: "be nice",
		UserPrompt:   "hi",
		ModelID:      "gemini-2.5-flash",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "hello there" {
		t.Errorf("text = %q", text)
	}
	if gotReq.SystemPrompt != "be nice" || gotReq.UserPrompt != "hi" || gotReq.ModelID != "gemini-2.5-flash" {
		t.Errorf("request body = %+v", gotReq)
	}
}

func TestGenerateEmptyTextIsNotAnError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	})

	text, err := c.Generate(context.Background(), Params{UserPrompt: "hi", ModelID: "m"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != BlockedResponseText {
		t.Errorf("text = %q, want blocked-response fallback", text)
	}
}

func TestGenerateRateLimitedNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(generateResponse{Error: "Too many requests. Please try again later."})
	})

	_, err := c.Generate(context.Background(), Params{UserPrompt: "hi", ModelID: "m"})
	if !IsRateLimited(err) {
		t.Fatalf("got %v, want rate-limited", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

func TestGenerateServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Text: "recovered"})
	})

	text, err := c.Generate(context.Background(), Params{UserPrompt: "hi", ModelID: "m"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q", text)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestGenerateServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(generateResponse{Error: "upstream exploded"})
	})

	_, err := c.Generate(context.Background(), Params{UserPrompt: "hi", ModelID: "m"})
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeServerError {
		t.Fatalf("got %v, want server error", err)
	}
	if ce.Message != "upstream exploded" {
		t.Errorf("message = %q, want server message carried through", ce.Message)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestGenerateBadRequestSurfacesImmediately(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(generateResponse{Error: "Missing required fields: systemPrompt and userPrompt."})
	})

	_, err := c.Generate(context.Background(), Params{ModelID: "m"})
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeRequestRejected {
		t.Fatalf("got %v, want request-rejected", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

func TestGenerateAbortNotRetried(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Drain the body so the server can watch for the client
		// disconnect; with it unread, r.Context() is never cancelled
		// and srv.Close deadlocks in cleanup.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.Generate(ctx, Params{UserPrompt: "hi", ModelID: "m"})
	if !IsAborted(err) {
		t.Fatalf("got %v, want aborted", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

func TestGenerateUndecodableBodySurfacesImmediately(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("not json"))
	})

	_, err := c.Generate(context.Background(), Params{UserPrompt: "hi", ModelID: "m"})
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeInvalidResponse {
		t.Fatalf("got %v, want invalid-response", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

func TestGenerateAttemptDeadlineIsAborted(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	c.config.Timeout = 30 * time.Millisecond

	_, err := c.Generate(context.Background(), Params{UserPrompt: "hi", ModelID: "m"})
	if !IsAborted(err) {
		t.Fatalf("got %v, want aborted", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}
