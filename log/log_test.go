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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalHandlerWritesKeyValues(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewLogger(NewTerminalHandlerWithLevel(out, LevelTrace, false))
	logger.Info("hello world", "peer", 3, "height", 17)

	line := out.String()
	require.Contains(t, line, "hello world")
	require.Contains(t, line, "peer=3")
	require.Contains(t, line, "height=17")
}

func TestGlogHandlerVerbosity(t *testing.T) {
	out := new(bytes.Buffer)
	glog := NewGlogHandler(NewTerminalHandlerWithLevel(out, LevelTrace, false))
	glog.Verbosity(LevelCrit)
	logger := NewLogger(glog)

	logger.Warn("should be suppressed")
	require.Empty(t, out.String())

	glog.Verbosity(LevelTrace)
	logger.Trace("should be seen", "foo", "bar")
	require.True(t, strings.Contains(out.String(), "should be seen"))
}

func TestFileHandlerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "randsync.log")
	logger := NewLogger(NewFileHandler(FileHandlerConfig{Path: path, Level: LevelInfo}))
	logger.Info("import complete", "best_height", 42)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "import complete")
	require.Contains(t, string(data), "best_height=42")
}

func TestJSONHandlerRespectsLevel(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewLogger(JSONHandlerWithLevel(out, LevelInfo))
	logger.Debug("hidden")
	require.Empty(t, out.String())

	logger.Info("shown")
	require.Contains(t, out.String(), "shown")
}
