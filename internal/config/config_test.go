// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodform/nutrifill/internal/config"
	"github.com/foodform/nutrifill/internal/prefill"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nutrifill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, config.Validate(cfg))
	assert.Equal(t, prefill.DefaultOFFBaseURL, cfg.Prefill.OFF().BaseURL)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
scan:
  concurrency: 8
prefill:
  dir: /var/lib/nutrifill/records
  timeout: 3s
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, 1, cfg.Scan.Column, "unset keys keep their default")
	assert.Equal(t, "/var/lib/nutrifill/records", cfg.Prefill.Dir)
	assert.Equal(t, 3*time.Second, cfg.Prefill.Timeout)
	assert.Equal(t, time.Hour, cfg.Prefill.CacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{name: "unknown level", content: "log: {level: loud}\n", errContains: "invalid configuration"},
		{name: "unknown format", content: "log: {format: xml}\n", errContains: "invalid configuration"},
		{name: "column out of range", content: "scan: {column: 3}\n", errContains: "invalid configuration"},
		{name: "zero concurrency", content: "scan: {concurrency: 0}\n", errContains: "invalid configuration"},
		{name: "bad base url", content: "prefill: {off_base_url: not a url}\n", errContains: "invalid configuration"},
		{name: "malformed yaml", content: "scan: [1", errContains: "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
