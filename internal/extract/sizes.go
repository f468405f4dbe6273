// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/scan"
)

// SyntheticServingName names the size added so that a per-100 column keeps
// the printed serving available.
const SyntheticServingName = "serving"

// servingQuantity is the amount and unit of a serving, printed on the label or
// stated in a header.
type servingQuantity struct {
	amount     float64
	unit       nutrition.Unit
	unitName   string
	equivalent *scan.EquivalentSize
	text       fill.RecognizedText
	label      *fill.RecognizedText
}

func labelServing(r *scan.Result) (servingQuantity, bool) {
	s := r.Serving
	if s == nil || s.Amount == nil || s.AmountText == nil || *s.Amount <= 0 {
		return servingQuantity{}, false
	}
	return servingQuantity{
		amount:     *s.Amount,
		unit:       s.Unit,
		unitName:   s.UnitName,
		equivalent: s.EquivalentSize,
		text:       s.AmountText.Text,
		label:      unitText(s.UnitText),
	}, true
}

func headerServing(r *scan.Result, column int) (servingQuantity, bool) {
	if headerType, ok := r.HeaderType(column); !ok || headerType != scan.HeaderPerServing {
		return servingQuantity{}, false
	}
	h := r.HeaderText(column)
	if h == nil || h.Serving == nil || h.Serving.Amount == nil || *h.Serving.Amount <= 0 {
		return servingQuantity{}, false
	}
	return servingQuantity{
		amount:     *h.Serving.Amount,
		unit:       h.Serving.Unit,
		unitName:   h.Serving.UnitName,
		equivalent: h.Serving.EquivalentSize,
		text:       h.Text,
		label:      h.AttributeText,
	}, true
}

// unitSize derives "Quantity UnitName = equivalent" from a serving such as
// "2 cookies (30 g)". A volume unit before the name becomes the volume
// prefix, as in "1 cup, chopped (140 g)".
func unitSize(r *scan.Result, q servingQuantity) *field.Value {
	eq := q.equivalent
	if q.unitName == "" || eq == nil || eq.Amount <= 0 || eq.Unit == nutrition.UnitNone {
		return nil
	}
	size := field.Size{
		Name:     q.unitName,
		Quantity: q.amount,
		Amount:   ptr(eq.Amount),
		Unit:     eq.Unit,
	}
	if q.unit.IsVolume() {
		size.VolumePrefixUnit = q.unit
	}
	f, ok := scannedFill(r, q.text, q.label, nil)
	if !ok {
		return nil
	}
	v := field.NewSize(size, f)
	return &v
}

// equivalentSize derives a size from the named equivalent of a serving, such
// as "30 g (about 3 pieces)".
func equivalentSize(r *scan.Result, q servingQuantity) *field.Value {
	eq := q.equivalent
	if eq == nil || eq.UnitName == "" || eq.Amount <= 0 {
		return nil
	}
	unit, sizeName := servingUnit(q.unit, q.unitName)
	size := field.Size{
		Name:     eq.UnitName,
		Quantity: eq.Amount,
		Amount:   ptr(q.amount),
		Unit:     unit,
		SizeName: sizeName,
	}
	f, ok := scannedFill(r, eq.AmountText.Text, unitText(eq.UnitText), nil)
	if !ok {
		return nil
	}
	v := field.NewSize(size, f)
	return &v
}

// perContainerSize derives the container size from "servings per container".
func perContainerSize(r *scan.Result) *field.Value {
	if r.Serving == nil || r.Serving.PerContainer == nil {
		return nil
	}
	pc := r.Serving.PerContainer
	if pc.Amount <= 0 {
		return nil
	}
	name := pc.Name
	if name == "" {
		name = "container"
	}
	f, ok := scannedFill(r, pc.AmountText.Text, unitText(pc.NameText), nil)
	if !ok {
		return nil
	}
	v := field.NewSize(field.Size{
		Name:     name,
		Quantity: 1,
		Amount:   ptr(pc.Amount),
		Unit:     nutrition.UnitServing,
	}, f)
	return &v
}

// syntheticServingSize keeps the printed serving visible as a size when the
// extracted column is per 100 g or 100 ml.
func syntheticServingSize(r *scan.Result, column int) *field.Value {
	headerType, ok := r.HeaderType(column)
	if !ok || (headerType != scan.HeaderPer100g && headerType != scan.HeaderPer100ml) {
		return nil
	}
	q, ok := labelServing(r)
	if !ok {
		return nil
	}
	unit, sizeName := servingUnit(q.unit, q.unitName)
	if unit == nutrition.UnitServing {
		return nil
	}
	f, ok := scannedFill(r, q.text, q.label, nil)
	if !ok {
		return nil
	}
	v := field.NewSize(field.Size{
		Name:     SyntheticServingName,
		Quantity: 1,
		Amount:   ptr(q.amount),
		Unit:     unit,
		SizeName: sizeName,
	}, f)
	return &v
}

// Sizes derives every size one result offers at a column.
func Sizes(r *scan.Result, column int) []field.Value {
	var derived []*field.Value
	if q, ok := labelServing(r); ok {
		derived = append(derived, unitSize(r, q), equivalentSize(r, q))
	}
	derived = append(derived, perContainerSize(r))
	if q, ok := headerServing(r, column); ok {
		derived = append(derived, unitSize(r, q), equivalentSize(r, q))
	}
	derived = append(derived, syntheticServingSize(r, column))

	var out []field.Value
	for _, v := range derived {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// AggregateSizes lists the best result's sizes first, then those of the other
// candidates. Duplicates are left for the store to drop on merge.
func AggregateSizes(sel Selection) []field.Value {
	var out []field.Value
	for _, r := range sel.Candidates {
		out = append(out, Sizes(r, sel.Column)...)
	}
	return out
}

func ptr(f float64) *float64 { return &f }
