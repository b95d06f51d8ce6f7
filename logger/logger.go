// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

// Package logger wraps log/slog so callers can plug their own structured
// logging sink into the credential. A nil *Logger is valid and discards
// everything.
package logger

import (
	"context"
	"fmt"
	"log/slog"
)

type Level string

const (
	Info  Level = "info"
	Err   Level = "error"
	Warn  Level = "warn"
	Debug Level = "debug"
)

// Logger wraps a *slog.Logger.
type Logger struct {
	logging *slog.Logger
}

// New creates a new logger instance.
func New(slogLogger *slog.Logger) (*Logger, error) {
	if slogLogger == nil {
		return nil, fmt.Errorf("invalid input; expected *slog.Logger")
	}
	return &Logger{logging: slogLogger}, nil
}

// Log logs the message and fields at the given level.
func (a *Logger) Log(level Level, message string, fields ...any) {
	if a == nil || a.logging == nil {
		return
	}
	var slogLevel slog.Level
	switch level {
	case Info:
		slogLevel = slog.LevelInfo
	case Err:
		slogLevel = slog.LevelError
	case Warn:
		slogLevel = slog.LevelWarn
	case Debug:
		slogLevel = slog.LevelDebug
	default:
		slogLevel = slog.LevelInfo
	}
	a.logging.Log(context.Background(), slogLevel, message, fields...)
}
