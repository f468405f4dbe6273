// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/scan"
)

// scannedFill anchors a value to a text of r's image. Computed values carry
// the null text id and are rejected.
func scannedFill(r *scan.Result, text fill.RecognizedText, attribute *fill.RecognizedText, value *nutrition.LabelValue) (fill.Fill, bool) {
	if text.IsNull() {
		return fill.Fill{}, false
	}
	return fill.Scanned(r.ImageText(text, attribute), value), true
}

// Amount is the quantity the column's values refer to: one serving for a
// per-serving column, 100 g or 100 ml otherwise.
func Amount(r *scan.Result, column int) *field.Value {
	headerType, ok := r.HeaderType(column)
	if !ok {
		return nil
	}
	header := r.HeaderText(column)

	var (
		amount float64
		unit   nutrition.Unit
		anchor *fill.RecognizedText
		label  *fill.RecognizedText
	)
	switch headerType {
	case scan.HeaderPerServing:
		amount, unit = 1, nutrition.UnitServing
		switch {
		case header != nil:
			anchor, label = &header.Text, header.AttributeText
		case r.Serving != nil && r.Serving.AmountText != nil:
			anchor, label = &r.Serving.AmountText.Text, r.Serving.AmountText.AttributeText
		}
	case scan.HeaderPer100g, scan.HeaderPer100ml:
		amount, unit = 100, nutrition.UnitGram
		if headerType == scan.HeaderPer100ml {
			unit = nutrition.UnitMilliliter
		}
		if header != nil {
			anchor, label = &header.Text, header.AttributeText
		}
	default:
		return nil
	}
	if anchor == nil {
		return nil
	}

	f, ok := scannedFill(r, *anchor, label, &nutrition.LabelValue{Amount: amount, Unit: unit})
	if !ok {
		return nil
	}
	v := field.NewAmount(amount, unit, "", f)
	return &v
}

// Serving is the serving size. A column explicitly typed per 100 g or 100 ml
// has none; otherwise the printed serving is used, falling back to the
// serving stated in the column header.
func Serving(r *scan.Result, column int) *field.Value {
	if headerType, ok := r.HeaderType(column); ok && headerType != scan.HeaderPerServing {
		return nil
	}

	if s := r.Serving; s != nil && s.Amount != nil && s.AmountText != nil && *s.Amount > 0 {
		unit, sizeName := servingUnit(s.Unit, s.UnitName)
		f, ok := scannedFill(r, s.AmountText.Text, unitText(s.UnitText), &nutrition.LabelValue{Amount: *s.Amount, Unit: unit})
		if ok {
			v := field.NewServing(*s.Amount, unit, sizeName, f)
			return &v
		}
	}

	header := r.HeaderText(column)
	if header == nil || header.Serving == nil || header.Serving.Amount == nil || *header.Serving.Amount <= 0 {
		return nil
	}
	hs := header.Serving
	unit, sizeName := servingUnit(hs.Unit, hs.UnitName)
	f, ok := scannedFill(r, header.Text, header.AttributeText, &nutrition.LabelValue{Amount: *hs.Amount, Unit: unit})
	if !ok {
		return nil
	}
	v := field.NewServing(*hs.Amount, unit, sizeName, f)
	return &v
}

// servingUnit keeps a recognized unit; a bare name such as "cookie" becomes
// a size name.
func servingUnit(unit nutrition.Unit, name string) (nutrition.Unit, string) {
	if unit != nutrition.UnitNone {
		return unit, ""
	}
	if name != "" {
		return nutrition.UnitNone, name
	}
	return nutrition.UnitServing, ""
}

func unitText(t *scan.StringText) *fill.RecognizedText {
	if t == nil {
		return nil
	}
	return &t.Text
}

// rowValue reads an attribute's value text and the fill anchoring it.
func rowValue(r *scan.Result, attr nutrition.Attribute, column int) (*scan.ValueText, fill.Fill, bool) {
	row := r.Row(attr)
	if row == nil {
		return nil, fill.Fill{}, false
	}
	vt := row.ValueText1
	if column == 2 {
		vt = row.ValueText2
	}
	if vt == nil {
		return nil, fill.Fill{}, false
	}
	label := vt.AttributeText
	if label == nil {
		label = &row.AttributeText
	}
	value := vt.Value
	f, ok := scannedFill(r, vt.Text, label, &value)
	if !ok {
		return nil, fill.Fill{}, false
	}
	return vt, f, true
}

// Energy reads the energy row, defaulting to kcal when the detected unit is
// not an energy unit.
func Energy(r *scan.Result, column int) *field.Value {
	vt, f, ok := rowValue(r, nutrition.AttributeEnergy, column)
	if !ok {
		return nil
	}
	unit := vt.Value.Unit
	if !unit.IsEnergy() {
		unit = nutrition.UnitKcal
	}
	v := field.NewEnergy(vt.Value.Amount, unit, f)
	return &v
}

// Macro reads a macronutrient row.
func Macro(r *scan.Result, column int, m nutrition.Macro) *field.Value {
	vt, f, ok := rowValue(r, nutrition.MacroAttribute(m), column)
	if !ok {
		return nil
	}
	v := field.NewMacro(m, vt.Value.Amount, f)
	return &v
}

// Micros reads every micronutrient row in label order.
func Micros(r *scan.Result, column int) []field.Value {
	var out []field.Value
	for _, row := range r.Rows {
		n, ok := row.Attribute.NutrientType()
		if !ok {
			continue
		}
		vt, f, ok := rowValue(r, row.Attribute, column)
		if !ok {
			continue
		}
		out = append(out, field.NewMicro(n, vt.Value.Amount, n.ResolveUnit(vt.Value.Unit), f))
	}
	return out
}
