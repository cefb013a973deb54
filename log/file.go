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

package log

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileHandlerConfig configures a rotating on-disk log sink.
type FileHandlerConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	JSON       bool
	Level      Level
}

// NewFileHandler builds a Handler that writes to a size/age-rotated file
// via lumberjack, in place of a hand-rolled async file writer.
func NewFileHandler(cfg FileHandlerConfig) slog.Handler {
	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    nonZero(cfg.MaxSizeMB, 100),
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	if cfg.JSON {
		return JSONHandlerWithLevel(w, cfg.Level)
	}
	return NewTerminalHandlerWithLevel(w, cfg.Level, false)
}

func nonZero(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
