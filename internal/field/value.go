// SPDX-License-Identifier: Apache-2.0

package field

import (
	"strings"

	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
)

// Kind selects which nutrition datum a Value holds.
type Kind string

const (
	KindAmount  Kind = "amount"
	KindServing Kind = "serving"
	KindEnergy  Kind = "energy"
	KindMacro   Kind = "macro"
	KindMicro   Kind = "micro"
	KindSize    Kind = "size"
	KindDensity Kind = "density"
	KindBarcode Kind = "barcode"
	KindName    Kind = "name"
	KindDetail  Kind = "detail"
	KindBrand   Kind = "brand"
)

// IsOneToOne reports kinds that occupy a single contested slot in a form.
func (k Kind) IsOneToOne() bool {
	switch k {
	case KindAmount, KindServing, KindEnergy, KindMacro, KindDensity, KindName, KindDetail, KindBrand:
		return true
	}
	return false
}

// DoubleValue is the payload of amount and serving values. SizeName is set
// when the unit is a named size such as "cookie".
type DoubleValue struct {
	Double   *float64       `json:"double,omitempty" yaml:"double,omitempty"`
	Unit     nutrition.Unit `json:"unit,omitempty" yaml:"unit,omitempty"`
	SizeName string         `json:"sizeName,omitempty" yaml:"sizeName,omitempty"`
}

type EnergyValue struct {
	Double *float64       `json:"double,omitempty" yaml:"double,omitempty"`
	Unit   nutrition.Unit `json:"unit,omitempty" yaml:"unit,omitempty"`
}

type MacroValue struct {
	Macro  nutrition.Macro `json:"macro" yaml:"macro"`
	Double *float64        `json:"double,omitempty" yaml:"double,omitempty"`
}

type MicroValue struct {
	Nutrient nutrition.NutrientType `json:"nutrient" yaml:"nutrient"`
	Double   *float64               `json:"double,omitempty" yaml:"double,omitempty"`
	Unit     nutrition.Unit         `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Size is a named portion: Quantity of Name weighs (or measures) Amount Unit.
// VolumePrefixUnit qualifies names such as "chopped" in "1 cup, chopped".
type Size struct {
	Name             string         `json:"name" yaml:"name"`
	Quantity         float64        `json:"quantity" yaml:"quantity"`
	VolumePrefixUnit nutrition.Unit `json:"volumePrefixUnit,omitempty" yaml:"volumePrefixUnit,omitempty"`
	Amount           *float64       `json:"amount,omitempty" yaml:"amount,omitempty"`
	Unit             nutrition.Unit `json:"unit,omitempty" yaml:"unit,omitempty"`
	SizeName         string         `json:"sizeName,omitempty" yaml:"sizeName,omitempty"`
}

// Density relates a weight to a volume.
type Density struct {
	WeightAmount float64        `json:"weightAmount" yaml:"weightAmount"`
	WeightUnit   nutrition.Unit `json:"weightUnit" yaml:"weightUnit"`
	VolumeAmount float64        `json:"volumeAmount" yaml:"volumeAmount"`
	VolumeUnit   nutrition.Unit `json:"volumeUnit" yaml:"volumeUnit"`
}

// IsValid checks unit complementarity and positivity.
func (d Density) IsValid() bool {
	return d.WeightUnit.IsWeight() && d.VolumeUnit.IsVolume() && d.WeightAmount > 0 && d.VolumeAmount > 0
}

type BarcodeValue struct {
	Payload   string `json:"payload" yaml:"payload"`
	Symbology string `json:"symbology,omitempty" yaml:"symbology,omitempty"`
}

// StringValue is the payload of name, detail and brand values.
type StringValue struct {
	String string `json:"string" yaml:"string"`
}

// Value is a tagged union of nutrition data paired with its provenance.
// Exactly the payload matching Kind is set.
type Value struct {
	Kind    Kind          `json:"kind" yaml:"kind"`
	Double  *DoubleValue  `json:"double,omitempty" yaml:"double,omitempty"`
	Energy  *EnergyValue  `json:"energy,omitempty" yaml:"energy,omitempty"`
	Macro   *MacroValue   `json:"macro,omitempty" yaml:"macro,omitempty"`
	Micro   *MicroValue   `json:"micro,omitempty" yaml:"micro,omitempty"`
	Size    *Size         `json:"size,omitempty" yaml:"size,omitempty"`
	Density *Density      `json:"density,omitempty" yaml:"density,omitempty"`
	Barcode *BarcodeValue `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	String  *StringValue  `json:"string,omitempty" yaml:"string,omitempty"`
	Fill    fill.Fill     `json:"fill" yaml:"fill"`
}

func ptr(f float64) *float64 { return &f }

func NewAmount(amount float64, unit nutrition.Unit, sizeName string, f fill.Fill) Value {
	return Value{Kind: KindAmount, Double: &DoubleValue{Double: ptr(amount), Unit: unit, SizeName: sizeName}, Fill: f}
}

func NewServing(amount float64, unit nutrition.Unit, sizeName string, f fill.Fill) Value {
	return Value{Kind: KindServing, Double: &DoubleValue{Double: ptr(amount), Unit: unit, SizeName: sizeName}, Fill: f}
}

func NewEnergy(amount float64, unit nutrition.Unit, f fill.Fill) Value {
	return Value{Kind: KindEnergy, Energy: &EnergyValue{Double: ptr(amount), Unit: unit}, Fill: f}
}

func NewMacro(m nutrition.Macro, amount float64, f fill.Fill) Value {
	return Value{Kind: KindMacro, Macro: &MacroValue{Macro: m, Double: ptr(amount)}, Fill: f}
}

func NewMicro(n nutrition.NutrientType, amount float64, unit nutrition.Unit, f fill.Fill) Value {
	return Value{Kind: KindMicro, Micro: &MicroValue{Nutrient: n, Double: ptr(amount), Unit: unit}, Fill: f}
}

func NewSize(s Size, f fill.Fill) Value {
	return Value{Kind: KindSize, Size: &s, Fill: f}
}

func NewDensity(d Density, f fill.Fill) Value {
	return Value{Kind: KindDensity, Density: &d, Fill: f}
}

func NewBarcode(payload, symbology string, f fill.Fill) Value {
	return Value{Kind: KindBarcode, Barcode: &BarcodeValue{Payload: payload, Symbology: symbology}, Fill: f}
}

// NewString builds a name, detail or brand value.
func NewString(kind Kind, s string, f fill.Fill) Value {
	return Value{Kind: kind, String: &StringValue{String: s}, Fill: f}
}

// IsEmpty reports whether the value carries no content.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindAmount, KindServing:
		return v.Double == nil || v.Double.Double == nil
	case KindEnergy:
		return v.Energy == nil || v.Energy.Double == nil
	case KindMacro:
		return v.Macro == nil || v.Macro.Double == nil
	case KindMicro:
		return v.Micro == nil || v.Micro.Double == nil
	case KindSize:
		return v.Size == nil || strings.TrimSpace(v.Size.Name) == "" || v.Size.Amount == nil
	case KindDensity:
		return v.Density == nil || !v.Density.IsValid()
	case KindBarcode:
		return v.Barcode == nil || v.Barcode.Payload == ""
	case KindName, KindDetail, KindBrand:
		return v.String == nil || strings.TrimSpace(v.String.String) == ""
	}
	return true
}

// Cleared drops the content and resets the Fill to userInput so that value
// and provenance never disagree. Identifying payload parts (macro, nutrient)
// are kept.
func (v Value) Cleared() Value {
	out := Value{Kind: v.Kind, Fill: fill.UserInput()}
	switch v.Kind {
	case KindAmount, KindServing:
		out.Double = &DoubleValue{}
	case KindEnergy:
		unit := nutrition.UnitKcal
		if v.Energy != nil && v.Energy.Unit != nutrition.UnitNone {
			unit = v.Energy.Unit
		}
		out.Energy = &EnergyValue{Unit: unit}
	case KindMacro:
		out.Macro = &MacroValue{}
		if v.Macro != nil {
			out.Macro.Macro = v.Macro.Macro
		}
	case KindMicro:
		out.Micro = &MicroValue{}
		if v.Micro != nil {
			out.Micro.Nutrient = v.Micro.Nutrient
			out.Micro.Unit = v.Micro.Unit
		}
	case KindSize:
		out.Size = &Size{}
	case KindDensity:
		out.Density = &Density{}
	case KindBarcode:
		out.Barcode = &BarcodeValue{}
	case KindName, KindDetail, KindBrand:
		out.String = &StringValue{}
	}
	return out
}

// WithFill returns a copy of v carrying f.
func (v Value) WithFill(f fill.Fill) Value {
	v.Fill = f
	return v
}

// SizeKey identifies a size for de-duplication: name plus volume prefix.
type SizeKey struct {
	Name             string
	VolumePrefixUnit nutrition.Unit
}

func (v Value) SizeKey() (SizeKey, bool) {
	if v.Kind != KindSize || v.Size == nil {
		return SizeKey{}, false
	}
	return SizeKey{
		Name:             strings.ToLower(strings.TrimSpace(v.Size.Name)),
		VolumePrefixUnit: v.Size.VolumePrefixUnit,
	}, true
}

// BarcodeKey identifies a barcode for de-duplication: its payload.
func (v Value) BarcodeKey() (string, bool) {
	if v.Kind != KindBarcode || v.Barcode == nil {
		return "", false
	}
	return v.Barcode.Payload, true
}

// Slot identifies the one-to-one slot a value occupies. Macros occupy one
// slot each; micros are keyed by nutrient.
type Slot struct {
	Kind     Kind
	Macro    nutrition.Macro
	Nutrient nutrition.NutrientType
}

func (v Value) Slot() Slot {
	s := Slot{Kind: v.Kind}
	if v.Kind == KindMacro && v.Macro != nil {
		s.Macro = v.Macro.Macro
	}
	if v.Kind == KindMicro && v.Micro != nil {
		s.Nutrient = v.Micro.Nutrient
	}
	return s
}

// Valid reports whether the payload matches the kind and the Fill is well formed.
func (v Value) Valid() bool {
	if !v.Fill.Valid() {
		return false
	}
	switch v.Kind {
	case KindAmount, KindServing:
		return v.Double != nil
	case KindEnergy:
		return v.Energy != nil
	case KindMacro:
		return v.Macro != nil
	case KindMicro:
		return v.Micro != nil
	case KindSize:
		return v.Size != nil
	case KindDensity:
		return v.Density != nil
	case KindBarcode:
		return v.Barcode != nil
	case KindName, KindDetail, KindBrand:
		return v.String != nil
	}
	return false
}
