// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the application logger: structured zap output
// to a size-rotated file, since stdout belongs to the user interface.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options control logger construction.
type Options struct {
	// Dir is the log directory; created if missing.
	Dir string
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string
	// MaxSizeMB caps one log file before rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep.
	MaxBackups int
}

// New builds a file-backed logger. The returned close func flushes
// buffered entries.
func New(opts Options) (*zap.Logger, func(), error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, nil, err
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 3
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "zaviye.log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, parseLevel(opts.Level))

	log := zap.New(core)
	return log, func() { _ = log.Sync() }, nil
}

// NewNop returns a logger that discards everything. For tests.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
