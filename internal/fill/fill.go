// SPDX-License-Identifier: Apache-2.0

// Package fill describes how a nutrition field value was obtained and which
// evidence backs it.
//
// A Fill is a tagged union: Kind selects the variant and at most one payload
// pointer is set. Fills are values; every operation returns a new Fill.
package fill

import (
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/nutrition"
)

// Kind selects the Fill variant.
type Kind string

const (
	// KindScanned is anchored to one detected text region.
	KindScanned Kind = "scanned"
	// KindSelection is anchored to zero or more texts the user tapped.
	KindSelection Kind = "selection"
	// KindPrefill is anchored to strings copied from a third-party record.
	KindPrefill Kind = "prefill"
	// KindUserInput carries no evidence and is never silently overwritten.
	KindUserInput Kind = "userInput"
	// KindDiscardable keeps the value after its evidence was lost.
	KindDiscardable Kind = "discardable"
	// KindBarcodeScanned is anchored to a barcode detected on an image.
	KindBarcodeScanned Kind = "barcodeScanned"
)

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool {
	switch k {
	case KindScanned, KindSelection, KindPrefill, KindUserInput, KindDiscardable, KindBarcodeScanned:
		return true
	}
	return false
}

// ScannedInfo is the payload of a scanned Fill.
type ScannedInfo struct {
	ImageText ImageText             `json:"imageText" yaml:"imageText"`
	Value     *nutrition.LabelValue `json:"value,omitempty" yaml:"value,omitempty"`
	AltValue  *nutrition.LabelValue `json:"altValue,omitempty" yaml:"altValue,omitempty"`
}

// SelectionInfo is the payload of a selection Fill.
type SelectionInfo struct {
	ImageText      *ImageText            `json:"imageText,omitempty" yaml:"imageText,omitempty"`
	ComponentTexts []ImageText           `json:"componentTexts,omitempty" yaml:"componentTexts,omitempty"`
	AltValue       *nutrition.LabelValue `json:"altValue,omitempty" yaml:"altValue,omitempty"`
}

func (s SelectionInfo) texts() []ImageText {
	texts := make([]ImageText, 0, len(s.ComponentTexts)+1)
	if s.ImageText != nil {
		texts = append(texts, *s.ImageText)
	}
	return append(texts, s.ComponentTexts...)
}

// PrefillField names the record field a prefill string was copied from.
type PrefillField string

const (
	PrefillName   PrefillField = "name"
	PrefillDetail PrefillField = "detail"
	PrefillBrand  PrefillField = "brand"
)

// PrefillFieldString is a substring copied from one field of a prefill record.
type PrefillFieldString struct {
	String string       `json:"string" yaml:"string"`
	Field  PrefillField `json:"field" yaml:"field"`
}

// PrefillInfo is the payload of a prefill Fill.
type PrefillInfo struct {
	FieldStrings []PrefillFieldString `json:"fieldStrings,omitempty" yaml:"fieldStrings,omitempty"`
}

// BarcodeInfo is the payload of a barcodeScanned Fill.
type BarcodeInfo struct {
	Barcode RecognizedBarcode `json:"barcode" yaml:"barcode"`
	ImageID uuid.UUID         `json:"imageId" yaml:"imageId"`
}

// Fill is the provenance of a field value.
type Fill struct {
	Kind      Kind           `json:"kind" yaml:"kind"`
	Scanned   *ScannedInfo   `json:"scanned,omitempty" yaml:"scanned,omitempty"`
	Selection *SelectionInfo `json:"selection,omitempty" yaml:"selection,omitempty"`
	Prefill   *PrefillInfo   `json:"prefill,omitempty" yaml:"prefill,omitempty"`
	Barcode   *BarcodeInfo   `json:"barcode,omitempty" yaml:"barcode,omitempty"`
}

// Scanned builds a scanned Fill.
func Scanned(text ImageText, value *nutrition.LabelValue) Fill {
	return Fill{Kind: KindScanned, Scanned: &ScannedInfo{ImageText: text, Value: value}}
}

// Selection builds a selection Fill over the given component texts.
func Selection(components ...ImageText) Fill {
	return Fill{Kind: KindSelection, Selection: &SelectionInfo{ComponentTexts: components}}
}

// Prefill builds a prefill Fill. Without strings the payload is omitted.
func Prefill(fieldStrings ...PrefillFieldString) Fill {
	if len(fieldStrings) == 0 {
		return Fill{Kind: KindPrefill}
	}
	return Fill{Kind: KindPrefill, Prefill: &PrefillInfo{FieldStrings: fieldStrings}}
}

// BarcodeScanned builds a barcodeScanned Fill.
func BarcodeScanned(barcode RecognizedBarcode, imageID uuid.UUID) Fill {
	return Fill{Kind: KindBarcodeScanned, Barcode: &BarcodeInfo{Barcode: barcode, ImageID: imageID}}
}

func UserInput() Fill   { return Fill{Kind: KindUserInput} }
func Discardable() Fill { return Fill{Kind: KindDiscardable} }

// Valid reports whether the payload matches the kind. A prefill Fill may
// lack a payload: numeric prefill values carry no copied strings.
func (f Fill) Valid() bool {
	switch f.Kind {
	case KindScanned:
		return f.Scanned != nil
	case KindSelection:
		return f.Selection != nil
	case KindBarcodeScanned:
		return f.Barcode != nil
	case KindPrefill, KindUserInput, KindDiscardable:
		return true
	}
	return false
}
