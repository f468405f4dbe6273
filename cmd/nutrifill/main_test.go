// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/snapshot"
)

const labelImageID = "7d1f0c3e-4a55-4b1e-9d6f-1f6a2b3c4d5e"

const labelYAML = `imageId: ` + labelImageID + `
headers:
  header1Text:
    type: perServing
    text: {id: a1000000-0000-4000-8000-000000000001, string: Per serving}
rows:
  - attribute: energy
    attributeText: {id: b1000000-0000-4000-8000-000000000001, string: Energy}
    valueText1:
      value: {amount: 250, unit: kcal}
      text: {id: c1000000-0000-4000-8000-000000000001, string: 250 kcal}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decodeSnapshot(t *testing.T, content string) *field.Store {
	t.Helper()
	snap, err := snapshot.Unmarshal([]byte(content))
	require.NoError(t, err)
	store := field.NewStore()
	require.NoError(t, snap.Restore(store))
	return store
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	label := writeFile(t, dir, "label.yaml", labelYAML)

	out, err := execute(t, "extract", label, "--format", "json")
	require.NoError(t, err)

	store := decodeSnapshot(t, out)
	energy, ok := store.Energy()
	require.True(t, ok)
	assert.Equal(t, 250.0, *energy.Value.Energy.Double)
	assert.Equal(t, fill.KindScanned, energy.Value.Fill.Kind)
}

func TestExtractCommand_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	label := writeFile(t, dir, "label.yaml", labelYAML)
	target := filepath.Join(dir, "form.yaml")

	out, err := execute(t, "extract", label, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NoError(t, snapshot.Validate(content))
}

func TestExtractCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{name: "no inputs", args: []string{"extract"}, errContains: "--prefill is required"},
		{name: "missing file", args: []string{"extract", filepath.Join(dir, "absent.json")}, errContains: "absent.json"},
		{name: "bad log level", args: []string{"extract", "--log-level", "loud", "x.json"}, errContains: "invalid configuration"},
		{name: "missing config", args: []string{"extract", "--config", filepath.Join(dir, "none.yaml"), "x.json"}, errContains: "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestExtractCommand_PrefillFromConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records")
	require.NoError(t, os.Mkdir(records, 0o700))
	writeFile(t, records, "oats.yaml", "name: Rolled Oats\n")
	cfg := writeFile(t, dir, "nutrifill.yaml", "prefill:\n  dir: "+records+"\n")

	out, err := execute(t, "--config", cfg, "extract", "--prefill", "oats")
	require.NoError(t, err)

	name, ok := decodeSnapshot(t, out).Name()
	require.True(t, ok)
	assert.Equal(t, "Rolled Oats", name.Value.String.String)
}

// ---------------------------------------------------------------------------
// remove-image and validate
// ---------------------------------------------------------------------------

func TestRemoveImageCommand(t *testing.T) {
	dir := t.TempDir()
	label := writeFile(t, dir, "label.yaml", labelYAML)
	extracted, err := execute(t, "extract", label)
	require.NoError(t, err)
	snap := writeFile(t, dir, "form.yaml", extracted)

	out, err := execute(t, "remove-image", snap, labelImageID)
	require.NoError(t, err)

	store := decodeSnapshot(t, out)
	assert.Empty(t, store.ImageIDs())
	energy, ok := store.Energy()
	require.True(t, ok)
	assert.Equal(t, fill.KindDiscardable, energy.Value.Fill.Kind)

	_, err = execute(t, "remove-image", snap)
	assert.Error(t, err, "requires two arguments")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "version: 1\nvalues: []\n")
	bad := writeFile(t, dir, "bad.yaml", "version: 2\nvalues: []\n")

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "good.yaml: ok")

	out, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 snapshots are invalid")
	assert.Contains(t, out, "bad.yaml: invalid snapshot")
}
