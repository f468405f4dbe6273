// SPDX-License-Identifier: Apache-2.0

package prefill

import (
	"math"
	"strconv"
	"strings"

	"github.com/foodform/nutrifill/internal/nutrition"
)

// OFFProduct is the subset of an Open Food Facts product record used for
// prefilling.
type OFFProduct struct {
	Code             string         `json:"code" yaml:"code"`
	ProductName      string         `json:"product_name" yaml:"product_name"`
	ProductNameEn    string         `json:"product_name_en" yaml:"product_name_en"`
	GenericName      string         `json:"generic_name" yaml:"generic_name"`
	ShortDescription string         `json:"short_description" yaml:"short_description"`
	Brands           string         `json:"brands" yaml:"brands"`
	ServingQuantity  any            `json:"serving_quantity" yaml:"serving_quantity"`
	ServingSize      string         `json:"serving_size" yaml:"serving_size"`
	Nutriments       map[string]any `json:"nutriments" yaml:"nutriments"`
}

// Name returns the best available product name: product_name, then
// product_name_en, generic_name and short_description.
func (p *OFFProduct) Name() string {
	for _, s := range []string{p.ProductName, p.ProductNameEn, p.GenericName, p.ShortDescription} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Brand returns the first listed brand.
func (p *OFFProduct) Brand() string {
	first, _, _ := strings.Cut(p.Brands, ",")
	return strings.TrimSpace(first)
}

type offNutriment struct {
	key      string
	nutrient nutrition.NutrientType
	// scale converts the per-100g value, always stored in grams, to unit.
	scale float64
	unit  nutrition.Unit
}

var offMicros = []offNutriment{
	{"saturated-fat", nutrition.NutrientSaturatedFat, 1, nutrition.UnitGram},
	{"monounsaturated-fat", nutrition.NutrientMonounsaturatedFat, 1, nutrition.UnitGram},
	{"polyunsaturated-fat", nutrition.NutrientPolyunsaturatedFat, 1, nutrition.UnitGram},
	{"trans-fat", nutrition.NutrientTransFat, 1, nutrition.UnitGram},
	{"cholesterol", nutrition.NutrientCholesterol, 1000, nutrition.UnitMilligram},
	{"fiber", nutrition.NutrientDietaryFiber, 1, nutrition.UnitGram},
	{"sugars", nutrition.NutrientSugars, 1, nutrition.UnitGram},
	{"added-sugars", nutrition.NutrientAddedSugars, 1, nutrition.UnitGram},
	{"polyols", nutrition.NutrientSugarAlcohols, 1, nutrition.UnitGram},
	{"sodium", nutrition.NutrientSodium, 1000, nutrition.UnitMilligram},
	{"salt", nutrition.NutrientSalt, 1, nutrition.UnitGram},
	{"calcium", nutrition.NutrientCalcium, 1000, nutrition.UnitMilligram},
	{"iron", nutrition.NutrientIron, 1000, nutrition.UnitMilligram},
	{"potassium", nutrition.NutrientPotassium, 1000, nutrition.UnitMilligram},
	{"magnesium", nutrition.NutrientMagnesium, 1000, nutrition.UnitMilligram},
	{"zinc", nutrition.NutrientZinc, 1000, nutrition.UnitMilligram},
	{"vitamin-c", nutrition.NutrientVitaminC, 1000, nutrition.UnitMilligram},
	{"vitamin-d", nutrition.NutrientVitaminD, 1e6, nutrition.UnitMicrogram},
	{"caffeine", nutrition.NutrientCaffeine, 1000, nutrition.UnitMilligram},
}

// FromOpenFoodFacts maps a product to a record per 100 g. Nutriments that
// are missing or outside a plausible range are left out.
func FromOpenFoodFacts(p *OFFProduct) *Record {
	r := &Record{
		Source: "openfoodfacts",
		Name:   p.Name(),
		Brand:  p.Brand(),
		Amount: &Quantity{Amount: 100, Unit: nutrition.UnitGram},
		Macros: map[nutrition.Macro]float64{},
	}
	if g := strings.TrimSpace(p.GenericName); g != "" && g != r.Name {
		r.Detail = g
	}
	if p.Code != "" {
		r.Barcodes = []string{p.Code}
	}
	if q, ok := toFloat(p.ServingQuantity); ok && q > 0 {
		r.Serving = &Quantity{Amount: q, Unit: nutrition.UnitGram}
	}

	if kcal, ok := p.nutriment("energy-kcal_100g", 0, 10000); ok {
		r.Energy = &Quantity{Amount: kcal, Unit: nutrition.UnitKcal}
	} else if kj, ok := p.nutriment("energy-kj_100g", 0, 41840); ok {
		r.Energy = &Quantity{Amount: kj, Unit: nutrition.UnitKJ}
	}

	for key, m := range map[string]nutrition.Macro{
		"carbohydrates_100g": nutrition.MacroCarb,
		"fat_100g":           nutrition.MacroFat,
		"proteins_100g":      nutrition.MacroProtein,
	} {
		if v, ok := p.nutriment(key, 0, 100); ok {
			r.Macros[m] = v
		}
	}

	for _, n := range offMicros {
		grams, ok := p.nutriment(n.key+"_100g", 0, 100)
		if !ok {
			continue
		}
		r.Micros = append(r.Micros, Micro{Nutrient: n.nutrient, Amount: grams * n.scale, Unit: n.unit})
	}
	return r
}

// nutriment reads a nutriment and checks it lies within [min, max].
func (p *OFFProduct) nutriment(key string, min, max float64) (float64, bool) {
	v, ok := toFloat(p.Nutriments[key])
	if !ok || v < min || v > max {
		return 0, false
	}
	return v, true
}

// toFloat coerces a JSON number or numeric string.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case uint64:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
