// SPDX-License-Identifier: Apache-2.0

package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodform/nutrifill/internal/config"
	"github.com/foodform/nutrifill/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len(), "below the configured level")

	logger.Warn("merge kept typed value", "kept", 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "merge kept typed value", entry["msg"])
	assert.Equal(t, "nutrifill", entry["service"])
	assert.Equal(t, 1.0, entry["kept"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logging.New(config.LogConfig{Level: "debug", Format: "text"}, &buf).Debug("scanned image", "rows", 4)
	assert.Contains(t, buf.String(), "msg=\"scanned image\"")
	assert.Contains(t, buf.String(), "rows=4")
}
