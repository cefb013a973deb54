// Copyright 2024 The randsync Authors
// This file is part of randsync.
//
// randsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// randsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with randsync.  If not, see <http://www.gnu.org/licenses/>.

// Package log provides structured, leveled logging built on top of the
// standard library's log/slog, in the shape the rest of this module expects:
// a Logger with With-context support and Trace/Debug/Info/Warn/Error/Crit
// methods taking alternating key-value pairs.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Level mirrors slog.Level but adds the Trace and Crit levels bitcoin-style
// node daemons traditionally use alongside the four standard ones.
type Level = slog.Level

const (
	LevelTrace Level = slog.LevelDebug - 4
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
	LevelCrit  Level = slog.LevelError + 4
)

// Logger is the interface the rest of the module logs through.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// With returns a Logger that always includes the given key-value pairs.
	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

// NewLogger wraps an slog.Handler as a Logger.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.log(LevelCrit, msg, ctx...) }

func (l *logger) log(lvl Level, msg string, ctx ...any) {
	l.inner.Log(context.Background(), lvl, msg, ctx...)
}

var root Logger = NewLogger(NewTerminalHandler(os.Stderr, false))

// SetDefault replaces the package-level default logger.
func SetDefault(l Logger) { root = l }

// Default returns the package-level default logger.
func Default() Logger { return root }

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }

// New creates a logger carrying the given context, derived from the current
// default. Handy for tagging a subsystem, e.g. log.New("component", "ingest").
func New(ctx ...any) Logger {
	return root.With(ctx...)
}
