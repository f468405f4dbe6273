// SPDX-License-Identifier: Apache-2.0

package prefill_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/prefill"
)

const sampleRecordYAML = `
source: manual
name: Rolled Oats
detail: Wholegrain
brand: Acme
amount: {amount: 100, unit: g}
serving: {amount: 40, unit: g}
energy: {amount: 375, unit: kcal}
macros:
  carb: 60
  fat: 7
  protein: 13
micros:
  - {nutrient: dietary_fiber, amount: 10, unit: g}
  - {nutrient: sodium, amount: 5}
  - {nutrient: unobtainium, amount: 1}
sizes:
  - {name: cup, quantity: 1, amount: 80, unit: g}
  - {name: "", quantity: 1, amount: 1, unit: g}
barcodes: ["5000112637922", " "]
`

const sampleOFFResponse = `{
  "status": 1,
  "product": {
    "code": "3017620422003",
    "product_name": "",
    "product_name_en": "Hazelnut spread",
    "generic_name": "Spread with cocoa",
    "brands": "Nutella, Ferrero",
    "serving_quantity": "15",
    "nutriments": {
      "energy-kcal_100g": 539,
      "carbohydrates_100g": 57.5,
      "fat_100g": 30.9,
      "proteins_100g": 6.3,
      "sugars_100g": 56.3,
      "sodium_100g": 0.0428,
      "fiber_100g": "n/a",
      "salt_100g": 500
    }
  }
}`

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func TestDecodeAndValues(t *testing.T) {
	record, err := prefill.Decode([]byte(sampleRecordYAML))
	require.NoError(t, err)
	assert.Equal(t, "Rolled Oats", record.Name)
	assert.Equal(t, 13.0, record.Macros[nutrition.MacroProtein])

	values := prefill.Values(record)
	for _, v := range values {
		assert.Equal(t, fill.KindPrefill, v.Fill.Kind, string(v.Kind))
	}

	byKind := map[field.Kind][]field.Value{}
	for _, v := range values {
		byKind[v.Kind] = append(byKind[v.Kind], v)
	}
	require.Len(t, byKind[field.KindName], 1)
	name := byKind[field.KindName][0]
	assert.Equal(t, []fill.PrefillFieldString{{String: "Rolled Oats", Field: fill.PrefillName}}, name.Fill.PrefillFieldStrings())
	assert.Equal(t, fill.PrefillBrand, byKind[field.KindBrand][0].Fill.PrefillFieldStrings()[0].Field)

	assert.Len(t, byKind[field.KindMacro], 3)
	require.Len(t, byKind[field.KindMicro], 2, "unknown nutrients are skipped")
	assert.Equal(t, nutrition.NutrientSodium.DefaultUnit(), byKind[field.KindMicro][1].Micro.Unit)
	assert.Len(t, byKind[field.KindSize], 1)
	assert.Len(t, byKind[field.KindBarcode], 1)
	assert.Len(t, byKind[field.KindServing], 1)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := prefill.Decode([]byte("name: [unclosed"))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Open Food Facts
// ---------------------------------------------------------------------------

func TestFromOpenFoodFacts(t *testing.T) {
	product := &prefill.OFFProduct{
		Code:            "123",
		ProductName:     "Oat Bar",
		GenericName:     "Oat Bar",
		Brands:          " Acme , Other",
		ServingQuantity: 30.0,
		Nutriments: map[string]any{
			"energy-kj_100g":     "1800",
			"proteins_100g":      120.0,
			"fat_100g":           uint64(9),
			"cholesterol_100g":   0.012,
			"vitamin-d_100g":     0.000005,
			"carbohydrates_100g": -1.0,
		},
	}
	r := prefill.FromOpenFoodFacts(product)

	assert.Equal(t, "Oat Bar", r.Name)
	assert.Empty(t, r.Detail, "generic name equal to the name adds nothing")
	assert.Equal(t, "Acme", r.Brand)
	assert.Equal(t, []string{"123"}, r.Barcodes)
	require.NotNil(t, r.Serving)
	assert.Equal(t, 30.0, r.Serving.Amount)

	require.NotNil(t, r.Energy)
	assert.Equal(t, nutrition.UnitKJ, r.Energy.Unit)
	assert.Equal(t, 1800.0, r.Energy.Amount)

	assert.NotContains(t, r.Macros, nutrition.MacroProtein, "implausible")
	assert.NotContains(t, r.Macros, nutrition.MacroCarb, "negative")
	assert.Equal(t, 9.0, r.Macros[nutrition.MacroFat])

	require.Len(t, r.Micros, 2)
	assert.Equal(t, nutrition.NutrientCholesterol, r.Micros[0].Nutrient)
	assert.InDelta(t, 12.0, r.Micros[0].Amount, 1e-9)
	assert.Equal(t, nutrition.UnitMilligram, r.Micros[0].Unit)
	assert.Equal(t, nutrition.NutrientVitaminD, r.Micros[1].Nutrient)
	assert.InDelta(t, 5.0, r.Micros[1].Amount, 1e-9)
}

func TestOFFSource_Fetch(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://off.test/api/v2/product/3017620422003.json",
		httpmock.NewStringResponder(http.StatusOK, sampleOFFResponse))

	src := prefill.NewOFFSource(prefill.OFFConfig{BaseURL: "https://off.test/"}, nil)
	r, err := src.Fetch(context.Background(), "3017620422003")
	require.NoError(t, err)

	assert.Equal(t, "Hazelnut spread", r.Name)
	assert.Equal(t, "Spread with cocoa", r.Detail)
	assert.Equal(t, "Nutella", r.Brand)
	assert.Equal(t, 15.0, r.Serving.Amount)
	assert.Equal(t, 539.0, r.Energy.Amount)

	micros := map[nutrition.NutrientType]float64{}
	for _, m := range r.Micros {
		micros[m.Nutrient] = m.Amount
	}
	assert.InDelta(t, 42.8, micros[nutrition.NutrientSodium], 1e-9)
	assert.Contains(t, micros, nutrition.NutrientSugars)
	assert.NotContains(t, micros, nutrition.NutrientDietaryFiber)
	assert.NotContains(t, micros, nutrition.NutrientSalt)

	_, err = src.Fetch(context.Background(), "3017620422003")
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "second fetch served from cache")
}

func TestOFFSource_FetchErrors(t *testing.T) {
	setupHTTPMock(t)

	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{name: "not_found", status: http.StatusNotFound, body: `{}`, notFound: true},
		{name: "unknown_product", status: http.StatusOK, body: `{"status": 0}`, notFound: true},
		{name: "server_error", status: http.StatusInternalServerError, body: `oops`},
		{name: "invalid_json", status: http.StatusOK, body: `{"status": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", `=~^https://off\.test/api/v2/product/`,
				httpmock.NewStringResponder(tt.status, tt.body))

			src := prefill.NewOFFSource(prefill.OFFConfig{BaseURL: "https://off.test"}, nil)
			r, err := src.Fetch(context.Background(), "42")
			require.Error(t, err)
			assert.Nil(t, r)
			assert.Equal(t, tt.notFound, errors.Is(err, prefill.ErrNotFound))
		})
	}
}

// ---------------------------------------------------------------------------
// Hydrate
// ---------------------------------------------------------------------------

type failingSource struct{}

func (failingSource) Fetch(context.Context, string) (*prefill.Record, error) {
	return nil, errors.New("network down")
}

func TestHydrate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oats.yaml"), []byte(sampleRecordYAML), 0o600))

	store := field.NewStore()
	_, err := store.EnterValue(field.NewMacro(nutrition.MacroProtein, 20, fill.UserInput()))
	require.NoError(t, err)

	report, ok := prefill.Hydrate(context.Background(), prefill.DirSource{Dir: dir}, "oats", store, nil)
	require.True(t, ok)
	assert.Equal(t, 1, report.Kept, "typed protein survives")

	protein, _ := store.Macro(nutrition.MacroProtein)
	assert.Equal(t, 20.0, *protein.Value.Macro.Double)
	name, ok := store.Name()
	require.True(t, ok)
	assert.Equal(t, "Rolled Oats", name.Value.String.String)
	assert.Equal(t, fill.KindPrefill, name.Value.Fill.Kind)
}

func TestHydrate_Degrades(t *testing.T) {
	store := field.NewStore()

	_, ok := prefill.Hydrate(context.Background(), failingSource{}, "x", store, nil)
	assert.False(t, ok)
	_, ok = prefill.Hydrate(context.Background(), prefill.DirSource{Dir: t.TempDir()}, "missing", store, nil)
	assert.False(t, ok)
	_, ok = prefill.Hydrate(context.Background(), prefill.DirSource{Dir: t.TempDir()}, "../etc/passwd", store, nil)
	assert.False(t, ok)

	assert.Empty(t, store.All())
}
