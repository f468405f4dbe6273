// SPDX-License-Identifier: Apache-2.0

// Package prefill converts third-party food records into field values tagged
// with prefill provenance.
package prefill

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
)

// Quantity is an amount with its unit.
type Quantity struct {
	Amount float64        `json:"amount" yaml:"amount"`
	Unit   nutrition.Unit `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Micro is a micronutrient amount of a record.
type Micro struct {
	Nutrient nutrition.NutrientType `json:"nutrient" yaml:"nutrient"`
	Amount   float64                `json:"amount" yaml:"amount"`
	Unit     nutrition.Unit         `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Record is a food as described by a third-party source. Nutrient amounts
// refer to Amount.
type Record struct {
	Source   string                      `json:"source,omitempty" yaml:"source,omitempty"`
	Name     string                      `json:"name,omitempty" yaml:"name,omitempty"`
	Detail   string                      `json:"detail,omitempty" yaml:"detail,omitempty"`
	Brand    string                      `json:"brand,omitempty" yaml:"brand,omitempty"`
	Amount   *Quantity                   `json:"amount,omitempty" yaml:"amount,omitempty"`
	Serving  *Quantity                   `json:"serving,omitempty" yaml:"serving,omitempty"`
	Energy   *Quantity                   `json:"energy,omitempty" yaml:"energy,omitempty"`
	Macros   map[nutrition.Macro]float64 `json:"macros,omitempty" yaml:"macros,omitempty"`
	Micros   []Micro                     `json:"micros,omitempty" yaml:"micros,omitempty"`
	Sizes    []field.Size                `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	Density  *field.Density              `json:"density,omitempty" yaml:"density,omitempty"`
	Barcodes []string                    `json:"barcodes,omitempty" yaml:"barcodes,omitempty"`
}

// Decode reads a record from YAML or JSON.
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode prefill record: %w", err)
	}
	return &r, nil
}

// Values converts a record into field values with prefill provenance. Text
// values carry the copied string tagged with the field it came from.
func Values(r *Record) []field.Value {
	if r == nil {
		return nil
	}
	var out []field.Value

	text := func(kind field.Kind, s string, source fill.PrefillField) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		out = append(out, field.NewString(kind, s, fill.Prefill(fill.PrefillFieldString{String: s, Field: source})))
	}
	text(field.KindName, r.Name, fill.PrefillName)
	text(field.KindDetail, r.Detail, fill.PrefillDetail)
	text(field.KindBrand, r.Brand, fill.PrefillBrand)

	if q := r.Amount; q != nil && q.Amount > 0 {
		out = append(out, field.NewAmount(q.Amount, q.Unit, "", fill.Prefill()))
	}
	if q := r.Serving; q != nil && q.Amount > 0 {
		out = append(out, field.NewServing(q.Amount, q.Unit, "", fill.Prefill()))
	}
	if q := r.Energy; q != nil {
		unit := q.Unit
		if !unit.IsEnergy() {
			unit = nutrition.UnitKcal
		}
		out = append(out, field.NewEnergy(q.Amount, unit, fill.Prefill()))
	}
	for _, m := range nutrition.Macros {
		if amount, ok := r.Macros[m]; ok {
			out = append(out, field.NewMacro(m, amount, fill.Prefill()))
		}
	}
	if r.Density != nil && r.Density.IsValid() {
		out = append(out, field.NewDensity(*r.Density, fill.Prefill()))
	}
	for _, m := range r.Micros {
		if !m.Nutrient.IsKnown() {
			continue
		}
		out = append(out, field.NewMicro(m.Nutrient, m.Amount, m.Nutrient.ResolveUnit(m.Unit), fill.Prefill()))
	}
	for _, s := range r.Sizes {
		if strings.TrimSpace(s.Name) == "" || s.Amount == nil {
			continue
		}
		out = append(out, field.NewSize(s, fill.Prefill()))
	}
	for _, b := range r.Barcodes {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, field.NewBarcode(b, "", fill.Prefill()))
		}
	}
	return out
}
