// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/scan"
)

// Density relates the weight and volume a serving is stated in, e.g.
// "1 cup (240 ml)" does not qualify while "1 cup (30 g)" does. The printed
// serving is tried before the column header.
func Density(r *scan.Result, column int) *field.Value {
	if q, ok := labelServing(r); ok {
		if v := densityFrom(r, q); v != nil {
			return v
		}
	}
	if q, ok := headerServing(r, column); ok {
		return densityFrom(r, q)
	}
	return nil
}

// DensityOf pairs two quantities into a density. It reports false unless one
// is a weight and the other a volume, both positive.
func DensityOf(amount1 float64, unit1 nutrition.Unit, amount2 float64, unit2 nutrition.Unit) (field.Density, bool) {
	if amount1 <= 0 || amount2 <= 0 {
		return field.Density{}, false
	}
	switch {
	case unit1.IsWeight() && unit2.IsVolume():
		return field.Density{WeightAmount: amount1, WeightUnit: unit1, VolumeAmount: amount2, VolumeUnit: unit2}, true
	case unit1.IsVolume() && unit2.IsWeight():
		return field.Density{WeightAmount: amount2, WeightUnit: unit2, VolumeAmount: amount1, VolumeUnit: unit1}, true
	}
	return field.Density{}, false
}

func densityFrom(r *scan.Result, q servingQuantity) *field.Value {
	eq := q.equivalent
	if eq == nil {
		return nil
	}
	d, ok := DensityOf(q.amount, q.unit, eq.Amount, eq.Unit)
	if !ok {
		return nil
	}
	// the equivalent amount establishes the relation; a header has only its own text
	text, label := eq.AmountText.Text, &q.text
	if text.IsNull() {
		text, label = q.text, q.label
	}
	f, ok := scannedFill(r, text, label, nil)
	if !ok {
		return nil
	}
	v := field.NewDensity(d, f)
	return &v
}
