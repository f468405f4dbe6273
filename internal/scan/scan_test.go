// SPDX-License-Identifier: Apache-2.0

package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/scan"
)

const sampleJSON = `{
  "imageId": "7d1f0c3e-4a55-4b1e-9d6f-1f6a2b3c4d5e",
  "headers": {"header1Type": "perServing"},
  "rows": [
    {"attribute": "Calories", "attributeText": {"id": "0b7e1a52-34c4-4a8e-8f0e-2a1c6f1e0b11", "string": "Calories"},
     "valueText1": {"value": {"amount": 250, "unit": "kcal"}, "text": {"id": "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f", "string": "250 kcal"}}},
    {"attribute": "Mystery Row", "attributeText": {"id": "2c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f", "string": "??"}}
  ]
}`

const sampleYAML = `results:
  - imageId: 7d1f0c3e-4a55-4b1e-9d6f-1f6a2b3c4d5e
    rows:
      - attribute: protein
        attributeText: {id: 0b7e1a52-34c4-4a8e-8f0e-2a1c6f1e0b11, string: Protein}
        valueText1:
          value: {amount: 18, unit: g}
          text: {id: 1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f, string: 18g}
  - imageId: 8d1f0c3e-4a55-4b1e-9d6f-1f6a2b3c4d5e
`

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

func TestPipeline_UnsupportedFormat(t *testing.T) {
	p := scan.NewPipeline() // no decoders registered
	_, err := p.Decode(context.Background(), scan.Document{Content: []byte("anything"), Format: "pdf", ID: "label.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scan format")
}

func TestPipeline_RegisteredDecoders(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml"}, scan.DefaultPipeline().RegisteredDecoders())
}

func TestPipeline_DecodeJSON(t *testing.T) {
	res, err := scan.DefaultPipeline().Decode(context.Background(), scan.Document{Content: []byte(sampleJSON), ID: "a.json"})
	require.NoError(t, err)
	assert.Equal(t, "json", res.DecoderUsed)
	require.Len(t, res.Results, 1)

	r := res.Results[0]
	assert.NotEqual(t, uuid.Nil, r.ID, "missing ids are assigned")
	assert.Equal(t, uuid.MustParse("7d1f0c3e-4a55-4b1e-9d6f-1f6a2b3c4d5e"), r.ImageID)
	require.Len(t, r.Rows, 1, "unknown attributes are dropped")
	assert.Equal(t, nutrition.AttributeEnergy, r.Rows[0].Attribute)

	ht, ok := r.HeaderType(1)
	require.True(t, ok)
	assert.Equal(t, scan.HeaderPerServing, ht)

	vt := r.ValueText(nutrition.AttributeEnergy, 1)
	require.NotNil(t, vt)
	assert.Equal(t, 250.0, vt.Value.Amount)
	assert.Equal(t, nutrition.UnitKcal, vt.Value.Unit)
}

func TestPipeline_DecodeYAMLList(t *testing.T) {
	res, err := scan.DefaultPipeline().Decode(context.Background(), scan.Document{Content: []byte(sampleYAML), ID: "b.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "yaml", res.DecoderUsed)
	require.Len(t, res.Results, 2)
	assert.Equal(t, 1, res.Results[0].NutrientCount())
	assert.Equal(t, 0, res.Results[1].NutrientCount())
}

func TestYAMLDecoder_InvalidYAML(t *testing.T) {
	_, err := scan.NewYAMLDecoder().Decode(context.Background(), scan.Document{Content: []byte("rows: [unclosed"), ID: "bad.yaml"})
	require.Error(t, err)
}

func TestDecoders_CanHandle(t *testing.T) {
	j := scan.NewJSONDecoder()
	y := scan.NewYAMLDecoder()

	assert.True(t, j.CanHandle(scan.Document{Format: "json"}))
	assert.True(t, j.CanHandle(scan.Document{Content: []byte(`[{"rows": []}]`)}))
	assert.False(t, j.CanHandle(scan.Document{Content: []byte("rows: []")}))

	assert.True(t, y.CanHandle(scan.Document{Format: "yml"}))
	assert.True(t, y.CanHandle(scan.Document{Content: []byte("rows: []")}))
	assert.False(t, y.CanHandle(scan.Document{Content: []byte("")}))
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

func TestResult_ColumnCount(t *testing.T) {
	perServing := scan.HeaderPerServing

	tests := []struct {
		name   string
		result *scan.Result
		want   int
	}{
		{name: "nil result", result: nil, want: 0},
		{name: "empty table", result: &scan.Result{}, want: 0},
		{name: "one column", result: &scan.Result{Rows: []scan.Row{{ValueText1: &scan.ValueText{}}}}, want: 1},
		{name: "two columns", result: &scan.Result{Rows: []scan.Row{{ValueText1: &scan.ValueText{}, ValueText2: &scan.ValueText{}}}}, want: 2},
		{name: "second header only", result: &scan.Result{Headers: &scan.Headers{Header2Type: &perServing}}, want: 2},
		{name: "first header only", result: &scan.Result{Headers: &scan.Headers{Header1Type: &perServing}}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.ColumnCount())
		})
	}
}

func TestResult_HeaderTypeFromText(t *testing.T) {
	r := &scan.Result{Headers: &scan.Headers{Header2Text: &scan.HeaderText{Type: scan.HeaderPer100ml}}}
	ht, ok := r.HeaderType(2)
	require.True(t, ok)
	assert.Equal(t, scan.HeaderPer100ml, ht)

	_, ok = r.HeaderType(1)
	assert.False(t, ok)
}

func TestStaticScanner(t *testing.T) {
	id := uuid.New()
	s := scan.StaticScanner{id: &scan.Result{ImageID: id}}

	r, err := s.Scan(context.Background(), scan.Image{ID: id})
	require.NoError(t, err)
	assert.Equal(t, id, r.ImageID)

	_, err = s.Scan(context.Background(), scan.Image{ID: uuid.New()})
	var noResult *scan.NoResultError
	assert.True(t, errors.As(err, &noResult))
}
