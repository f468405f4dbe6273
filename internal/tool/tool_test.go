// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/prefill"
	"github.com/foodform/nutrifill/internal/snapshot"
)

const labelImageID = "7d1f0c3e-4a55-4b1e-9d6f-1f6a2b3c4d5e"

const twoColumnLabel = `{
  "imageId": "` + labelImageID + `",
  "headers": {
    "header1Text": {"type": "perServing", "text": {"id": "a1000000-0000-4000-8000-000000000001", "string": "Per serving"}},
    "header2Text": {"type": "per100g", "text": {"id": "a1000000-0000-4000-8000-000000000002", "string": "Per 100 g"}}
  },
  "rows": [
    {"attribute": "energy", "attributeText": {"id": "b1000000-0000-4000-8000-000000000001", "string": "Energy"},
     "valueText1": {"value": {"amount": 250, "unit": "kcal"}, "text": {"id": "c1000000-0000-4000-8000-000000000001", "string": "250 kcal"}},
     "valueText2": {"value": {"amount": 500, "unit": "kcal"}, "text": {"id": "c1000000-0000-4000-8000-000000000002", "string": "500 kcal"}}},
    {"attribute": "protein", "attributeText": {"id": "b1000000-0000-4000-8000-000000000002", "string": "Protein"},
     "valueText1": {"value": {"amount": 9, "unit": "g"}, "text": {"id": "c1000000-0000-4000-8000-000000000003", "string": "9 g"}},
     "valueText2": {"value": {"amount": 18, "unit": "g"}, "text": {"id": "c1000000-0000-4000-8000-000000000004", "string": "18 g"}}}
  ]
}`

const barcodeLabel = `results:
  - headers:
      header1Type: perServing
      header2Type: per100g
    rows:
      - attribute: protein
        attributeText: {id: d1000000-0000-4000-8000-000000000001, string: Protein}
        valueText1:
          value: {amount: 9, unit: g}
          text: {id: d1000000-0000-4000-8000-000000000002, string: 9 g}
    barcodes:
      - {payload: "5000112637922", symbology: ean13}
`

func restored(t *testing.T, content string) *field.Store {
	t.Helper()
	snap, err := snapshot.Unmarshal([]byte(content))
	require.NoError(t, err)
	store := field.NewStore()
	require.NoError(t, snap.Restore(store))
	return store
}

func userEnergySnapshot(t *testing.T) string {
	t.Helper()
	store := field.NewStore()
	_, err := store.EnterValue(field.NewEnergy(300, nutrition.UnitKcal, fill.UserInput()))
	require.NoError(t, err)
	data, err := snapshot.Marshal(snapshot.FromStore(store), snapshot.FormatYAML)
	require.NoError(t, err)
	return string(data)
}

// ---------------------------------------------------------------------------
// extract_nutrition_fields
// ---------------------------------------------------------------------------

func TestExtractNutritionFields(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	h := &Handlers{}

	tests := []struct {
		name           string
		input          InputExtractNutritionFields
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputExtractNutritionFields)
	}{
		{
			name:        "no documents returns error",
			input:       InputExtractNutritionFields{},
			wantErr:     true,
			errContains: "at least one document",
		},
		{
			name:        "prefill id without a source returns error",
			input:       InputExtractNutritionFields{PrefillID: "oats"},
			wantErr:     true,
			errContains: "no prefill source",
		},
		{
			name:        "empty content returns error",
			input:       InputExtractNutritionFields{Documents: []InputDocument{{Content: ""}}},
			wantErr:     true,
			errContains: "content is required",
		},
		{
			name: "unsupported output format returns error",
			input: InputExtractNutritionFields{
				Documents:    []InputDocument{{Content: twoColumnLabel}},
				OutputFormat: "toml",
			},
			wantErr:     true,
			errContains: "unsupported snapshot format",
		},
		{
			name: "undecodable document returns error",
			input: InputExtractNutritionFields{
				Documents: []InputDocument{{Content: "just some words", SourceID: "notes.txt"}},
			},
			wantErr:     true,
			errContains: "notes.txt",
		},
		{
			name: "invalid snapshot returns error",
			input: InputExtractNutritionFields{
				Documents: []InputDocument{{Content: twoColumnLabel}},
				Snapshot:  "version: 7\nvalues: []\n",
			},
			wantErr:     true,
			errContains: "invalid snapshot",
		},
		{
			name: "first column of a label",
			input: InputExtractNutritionFields{
				Documents: []InputDocument{{Content: twoColumnLabel, SourceID: "label.json"}},
			},
			validateOutput: func(t *testing.T, output OutputExtractNutritionFields) {
				assert.Equal(t, []string{"json"}, output.DecodersUsed)
				assert.Equal(t, 1, output.Column)
				assert.Equal(t, 2, output.ColumnCount)
				assert.Equal(t, 3, output.Report.Created, "amount, energy and protein")
				assert.Equal(t, []string{labelImageID}, output.Report.Processed)

				store := restored(t, output.Snapshot)
				energy, ok := store.Energy()
				require.True(t, ok)
				assert.Equal(t, 250.0, *energy.Value.Energy.Double)
				assert.Equal(t, fill.KindScanned, energy.Value.Fill.Kind)
				amount, ok := store.Amount()
				require.True(t, ok)
				assert.Equal(t, nutrition.UnitServing, amount.Value.Double.Unit)
			},
		},
		{
			name: "second column as json",
			input: InputExtractNutritionFields{
				Documents:    []InputDocument{{Content: twoColumnLabel}},
				Column:       2,
				OutputFormat: "json",
			},
			validateOutput: func(t *testing.T, output OutputExtractNutritionFields) {
				assert.Equal(t, 2, output.Column)
				assert.Contains(t, output.Snapshot, `"version"`)

				store := restored(t, output.Snapshot)
				protein, ok := store.Macro(nutrition.MacroProtein)
				require.True(t, ok)
				assert.Equal(t, 18.0, *protein.Value.Macro.Double)
				amount, ok := store.Amount()
				require.True(t, ok)
				assert.Equal(t, 100.0, *amount.Value.Double.Double)
				assert.Equal(t, nutrition.UnitGram, amount.Value.Double.Unit)
			},
		},
		{
			name: "typed energy in the snapshot is kept",
			input: InputExtractNutritionFields{
				Documents: []InputDocument{{Content: twoColumnLabel}},
				Snapshot:  userEnergySnapshot(t),
			},
			validateOutput: func(t *testing.T, output OutputExtractNutritionFields) {
				assert.Equal(t, 1, output.Report.Kept)

				store := restored(t, output.Snapshot)
				energy, ok := store.Energy()
				require.True(t, ok)
				assert.Equal(t, 300.0, *energy.Value.Energy.Double)
				assert.Equal(t, fill.KindUserInput, energy.Value.Fill.Kind)
			},
		},
		{
			name: "barcodes from a compatible second document are merged",
			input: InputExtractNutritionFields{
				Documents: []InputDocument{
					{Content: twoColumnLabel},
					{Content: barcodeLabel, Format: "yaml"},
				},
			},
			validateOutput: func(t *testing.T, output OutputExtractNutritionFields) {
				assert.Equal(t, []string{"json", "yaml"}, output.DecodersUsed)
				assert.Len(t, output.Report.Processed, 2)

				store := restored(t, output.Snapshot)
				barcodes := store.Barcodes()
				require.Len(t, barcodes, 1)
				assert.Equal(t, "5000112637922", barcodes[0].Value.Barcode.Payload)
				assert.Equal(t, fill.KindBarcodeScanned, barcodes[0].Value.Fill.Kind)
				assert.Len(t, store.ImageIDs(), 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := h.ExtractNutritionFields(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestExtractNutritionFields_Prefill(t *testing.T) {
	dir := t.TempDir()
	record := "name: Rolled Oats\nenergy: {amount: 375, unit: kcal}\nmacros: {carb: 60}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oats.yaml"), []byte(record), 0o600))
	h := &Handlers{Prefill: prefill.DirSource{Dir: dir}}

	_, output, err := h.ExtractNutritionFields(context.Background(), &mcp.CallToolRequest{}, InputExtractNutritionFields{
		Documents: []InputDocument{{Content: twoColumnLabel}},
		PrefillID: "oats",
	})
	require.NoError(t, err)
	require.NotNil(t, output.Prefill)
	assert.Equal(t, 3, output.Prefill.Created, "name, energy and carbs")
	assert.Equal(t, 1, output.Report.Kept, "scanned energy does not replace the prefilled one")

	store := restored(t, output.Snapshot)
	energy, ok := store.Energy()
	require.True(t, ok)
	assert.Equal(t, 375.0, *energy.Value.Energy.Double)
	assert.Equal(t, fill.KindPrefill, energy.Value.Fill.Kind)
	protein, ok := store.Macro(nutrition.MacroProtein)
	require.True(t, ok)
	assert.Equal(t, fill.KindScanned, protein.Value.Fill.Kind)

	_, output, err = h.ExtractNutritionFields(context.Background(), &mcp.CallToolRequest{}, InputExtractNutritionFields{
		PrefillID: "missing",
	})
	require.NoError(t, err, "an unavailable record degrades to an unchanged form")
	assert.Nil(t, output.Prefill)
	assert.Empty(t, restored(t, output.Snapshot).All())
}

// ---------------------------------------------------------------------------
// remove_image
// ---------------------------------------------------------------------------

func TestRemoveImage(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	h := &Handlers{}

	_, extracted, err := h.ExtractNutritionFields(ctx, req, InputExtractNutritionFields{
		Documents: []InputDocument{{Content: twoColumnLabel}},
	})
	require.NoError(t, err)

	tests := []struct {
		name           string
		input          InputRemoveImage
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputRemoveImage)
	}{
		{
			name:        "missing snapshot returns error",
			input:       InputRemoveImage{ImageID: labelImageID},
			wantErr:     true,
			errContains: "snapshot is required",
		},
		{
			name:        "invalid image id returns error",
			input:       InputRemoveImage{Snapshot: extracted.Snapshot, ImageID: "nope"},
			wantErr:     true,
			errContains: "invalid image_id",
		},
		{
			name:  "fields read from the image become discardable",
			input: InputRemoveImage{Snapshot: extracted.Snapshot, ImageID: labelImageID},
			validateOutput: func(t *testing.T, output OutputRemoveImage) {
				assert.True(t, output.Found)
				assert.ElementsMatch(t, []string{"amount", "energy", "macro"}, output.Affected)

				store := restored(t, output.Snapshot)
				assert.Empty(t, store.ImageIDs())
				energy, ok := store.Energy()
				require.True(t, ok)
				assert.Equal(t, 250.0, *energy.Value.Energy.Double, "value is kept")
				assert.Equal(t, fill.KindDiscardable, energy.Value.Fill.Kind)
			},
		},
		{
			name:  "unknown image leaves the form unchanged",
			input: InputRemoveImage{Snapshot: extracted.Snapshot, ImageID: uuid.NewString()},
			validateOutput: func(t *testing.T, output OutputRemoveImage) {
				assert.False(t, output.Found)
				assert.Empty(t, output.Affected)

				store := restored(t, output.Snapshot)
				energy, ok := store.Energy()
				require.True(t, ok)
				assert.Equal(t, fill.KindScanned, energy.Value.Fill.Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := h.RemoveImage(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}
