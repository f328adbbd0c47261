// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zaviye/internal/config"
	"github.com/jeranaias/zaviye/internal/genai"
	"github.com/jeranaias/zaviye/internal/model"
	"github.com/jeranaias/zaviye/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	a, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewMemoryBackend(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, a.Registry)
	assert.NotNil(t, a.Engine)
	assert.NotNil(t, a.Backup)
	assert.NotNil(t, a.Limiter)
}

func TestNewFileBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "file"
	cfg.Storage.Dir = t.TempDir()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.SetGlobalModel(model.DefaultModelID))
}

func TestNewSQLiteBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Dir = t.TempDir()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.SetGlobalModel("gemini-2.0-flash"))
	assert.FileExists(t, filepath.Join(cfg.Storage.Dir, "zaviye.db"))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "redis"
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestGlobalModelDefaultsAndPersists(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, a.Config().DefaultModel, a.GlobalModel())

	require.NoError(t, a.SetGlobalModel("gemini-2.5-pro"))
	assert.Equal(t, "gemini-2.5-pro", a.GlobalModel())
}

func TestSetGlobalModelRejectsUnknown(t *testing.T) {
	a := newTestApp(t)
	err := a.SetGlobalModel("gpt-4")
	require.Error(t, err)
	assert.Equal(t, a.Config().DefaultModel, a.GlobalModel())
}

func TestGlobalModelIgnoresStaleStoredValue(t *testing.T) {
	a := newTestApp(t)
	// A model removed from the lineup may linger in the store.
	require.NoError(t, a.store.Set(store.KeyGlobalModel, "gemini-1.0-retired"))
	assert.Equal(t, a.Config().DefaultModel, a.GlobalModel())
}

func TestApplyConfigSwapsClient(t *testing.T) {
	a := newTestApp(t)
	before := a.gen.inner

	next := config.Default()
	next.Storage.Backend = "memory"
	next.Generation.MaxRetries = 1
	a.ApplyConfig(next)

	assert.NotSame(t, before, a.gen.inner)
	assert.Equal(t, next, a.Config())
}

func TestSwitchableGeneratorDelegates(t *testing.T) {
	a := newTestApp(t)
	a.gen.swap(stubGenerator{reply: "pong"})

	s, err := a.Engine.Session("glitch")
	require.NoError(t, err)
	msg, err := s.Send(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", msg.Content)
}

func TestImportBackupRefreshesEngine(t *testing.T) {
	a := newTestApp(t)
	a.gen.swap(stubGenerator{reply: "first"})

	s, err := a.Engine.Session("glitch")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "hello")
	require.NoError(t, err)

	doc := a.Backup.ExportAll()
	doc.Histories["blame"] = []model.Message{model.NewUserMessage("carried over")}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	s.ClearHistory()
	require.Empty(t, s.Messages())

	require.NoError(t, a.ImportBackup(data))
	assert.Len(t, s.Messages(), 2)

	blame, err := a.Engine.Session("blame")
	require.NoError(t, err)
	assert.Len(t, blame.Messages(), 1)
	assert.True(t, blame.HasStarted())
}

func TestImportBackupRejectsBadPayload(t *testing.T) {
	a := newTestApp(t)
	err := a.ImportBackup([]byte(`{"personas": []}`))
	require.Error(t, err)
}

type stubGenerator struct {
	reply string
}

func (g stubGenerator) Generate(_ context.Context, _ genai.Params) (string, error) {
	return g.reply, nil
}
