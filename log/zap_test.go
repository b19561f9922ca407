// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLevels(t *testing.T) {
	testCases := []struct {
		name  string
		level Level
		log   func(logger Logger)
		msg   string
	}{
		{name: "debug", level: DebugLevel, log: func(l Logger) { l.Debug("test debug") }, msg: "test debug"},
		{name: "debugf", level: DebugLevel, log: func(l Logger) { l.Debugf("test %s", "debugf") }, msg: "test debugf"},
		{name: "info", level: InfoLevel, log: func(l Logger) { l.Info("test info") }, msg: "test info"},
		{name: "infof", level: InfoLevel, log: func(l Logger) { l.Infof("test %s", "infof") }, msg: "test infof"},
		{name: "warn", level: WarningLevel, log: func(l Logger) { l.Warn("test warn") }, msg: "test warn"},
		{name: "warnf", level: WarningLevel, log: func(l Logger) { l.Warnf("test %s", "warnf") }, msg: "test warnf"},
		{name: "error", level: ErrorLevel, log: func(l Logger) { l.Error("test error") }, msg: "test error"},
		{name: "errorf", level: ErrorLevel, log: func(l Logger) { l.Errorf("test %s", "errorf") }, msg: "test errorf"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buffer := new(bytes.Buffer)
			logger := NewZap(tc.level, buffer)
			require.Equal(t, tc.level, logger.LogLevel())

			tc.log(logger)
			require.NoError(t, logger.Flush())

			entry := decodeEntry(t, buffer.Bytes())
			assert.Equal(t, tc.msg, field(t, entry, "msg"))
			assert.Equal(t, tc.level.String(), field(t, entry, "level"))
		})
	}
}

func TestZapFiltersLowerLevels(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(ErrorLevel, buffer)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("hidden")
	assert.Zero(t, buffer.Len())

	assert.False(t, logger.Enabled(DebugLevel))
	assert.False(t, logger.Enabled(InfoLevel))
	assert.False(t, logger.Enabled(WarningLevel))
	assert.True(t, logger.Enabled(ErrorLevel))
	assert.True(t, logger.Enabled(PanicLevel))
}

func TestZapUnknownLevel(t *testing.T) {
	logger := NewZap(Level(42), new(bytes.Buffer))
	assert.Equal(t, DebugLevel, logger.LogLevel())
	assert.Equal(t, "invalid", Level(42).String())
}

func TestZapWith(t *testing.T) {
	t.Run("With structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("node", "node-1", "version", uint64(3), "vnodes", 128, "cause", errors.New("boom")).Info("joined")

		entry := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "joined", field(t, entry, "msg"))
		assert.Equal(t, "node-1", field(t, entry, "node"))
		assert.JSONEq(t, "3", string(entry["version"]))
		assert.JSONEq(t, "128", string(entry["vnodes"]))
		assert.Equal(t, "boom", field(t, entry, "cause"))
	})
	t.Run("With odd key values", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("a", true, "orphan").Info("msg")

		entry := decodeEntry(t, buffer.Bytes())
		assert.Contains(t, entry, "a")
		assert.Equal(t, "orphan", field(t, entry, "_"))
	})
	t.Run("With non-string keys", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		assert.Same(t, logger, logger.With())
		assert.Same(t, logger, logger.With(1, 2, 3, 4))
	})
}

func TestZapOutputs(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer file.Close()

	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer, file, os.Stdout)
	assert.Len(t, logger.LogOutput(), 3)

	logger.Info("to every output")
	require.NoError(t, logger.Flush())

	content, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Equal(t, "to every output", field(t, decodeEntry(t, content), "msg"))
	assert.True(t, isStdStream(os.Stdout))
	assert.False(t, isStdStream(file))
	assert.False(t, isStdStream(nil))
}

func TestZapPanic(t *testing.T) {
	logger := NewZap(InfoLevel, new(bytes.Buffer))
	assert.Panics(t, func() { logger.Panic("test panic") })
	assert.Panics(t, func() { logger.Panicf("test %s", "panicf") })
}

func decodeEntry(t *testing.T, out []byte) map[string]json.RawMessage {
	t.Helper()
	entry := make(map[string]json.RawMessage)
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &entry))
	return entry
}

func field(t *testing.T, entry map[string]json.RawMessage, key string) string {
	t.Helper()
	raw, ok := entry[key]
	require.True(t, ok, "missing key %s", key)
	value, err := strconv.Unquote(string(raw))
	require.NoError(t, err)
	return value
}
