// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
)

// HeaderType is the basis of a nutrition table column.
type HeaderType string

const (
	HeaderPer100g    HeaderType = "per100g"
	HeaderPer100ml   HeaderType = "per100ml"
	HeaderPerServing HeaderType = "perServing"
)

// ValueText is a detected value together with the text it was read from.
type ValueText struct {
	Value         nutrition.LabelValue `json:"value" yaml:"value"`
	Text          fill.RecognizedText  `json:"text" yaml:"text"`
	AttributeText *fill.RecognizedText `json:"attributeText,omitempty" yaml:"attributeText,omitempty"`
}

// DoubleText is a bare number and the text it was read from.
type DoubleText struct {
	Double        float64              `json:"double" yaml:"double"`
	Text          fill.RecognizedText  `json:"text" yaml:"text"`
	AttributeText *fill.RecognizedText `json:"attributeText,omitempty" yaml:"attributeText,omitempty"`
}

// StringText is a string and the text it was read from.
type StringText struct {
	String        string               `json:"string" yaml:"string"`
	Text          fill.RecognizedText  `json:"text" yaml:"text"`
	AttributeText *fill.RecognizedText `json:"attributeText,omitempty" yaml:"attributeText,omitempty"`
}

// Row is one nutrient line of the label with up to two value columns.
type Row struct {
	Attribute     nutrition.Attribute `json:"attribute" yaml:"attribute"`
	AttributeText fill.RecognizedText `json:"attributeText" yaml:"attributeText"`
	ValueText1    *ValueText          `json:"valueText1,omitempty" yaml:"valueText1,omitempty"`
	ValueText2    *ValueText          `json:"valueText2,omitempty" yaml:"valueText2,omitempty"`
}

// EquivalentSize is a secondary amount stated next to a serving,
// e.g. the "(30 g)" in "1 pack (30 g)".
type EquivalentSize struct {
	Amount     float64        `json:"amount" yaml:"amount"`
	AmountText DoubleText     `json:"amountText" yaml:"amountText"`
	Unit       nutrition.Unit `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitText   *StringText    `json:"unitText,omitempty" yaml:"unitText,omitempty"`
	UnitName   string         `json:"unitName,omitempty" yaml:"unitName,omitempty"`
}

// PerContainer is the "servings per container" line.
type PerContainer struct {
	Amount     float64     `json:"amount" yaml:"amount"`
	AmountText DoubleText  `json:"amountText" yaml:"amountText"`
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	NameText   *StringText `json:"nameText,omitempty" yaml:"nameText,omitempty"`
}

// Serving describes the serving size printed on the label.
type Serving struct {
	Amount         *float64        `json:"amount,omitempty" yaml:"amount,omitempty"`
	AmountText     *DoubleText     `json:"amountText,omitempty" yaml:"amountText,omitempty"`
	Unit           nutrition.Unit  `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitText       *StringText     `json:"unitText,omitempty" yaml:"unitText,omitempty"`
	UnitName       string          `json:"unitName,omitempty" yaml:"unitName,omitempty"`
	EquivalentSize *EquivalentSize `json:"equivalentSize,omitempty" yaml:"equivalentSize,omitempty"`
	PerContainer   *PerContainer   `json:"perContainer,omitempty" yaml:"perContainer,omitempty"`
}

// HeaderServing is a serving stated inside a column header, as in
// "Per 1 biscuit (25 g)".
type HeaderServing struct {
	Amount         *float64        `json:"amount,omitempty" yaml:"amount,omitempty"`
	Unit           nutrition.Unit  `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitName       string          `json:"unitName,omitempty" yaml:"unitName,omitempty"`
	EquivalentSize *EquivalentSize `json:"equivalentSize,omitempty" yaml:"equivalentSize,omitempty"`
}

// HeaderText is a detected column header.
type HeaderText struct {
	Type          HeaderType           `json:"type" yaml:"type"`
	Text          fill.RecognizedText  `json:"text" yaml:"text"`
	AttributeText *fill.RecognizedText `json:"attributeText,omitempty" yaml:"attributeText,omitempty"`
	Serving       *HeaderServing       `json:"serving,omitempty" yaml:"serving,omitempty"`
}

// Headers holds the header of each column.
type Headers struct {
	Header1Type *HeaderType `json:"header1Type,omitempty" yaml:"header1Type,omitempty"`
	Header1Text *HeaderText `json:"header1Text,omitempty" yaml:"header1Text,omitempty"`
	Header2Type *HeaderType `json:"header2Type,omitempty" yaml:"header2Type,omitempty"`
	Header2Text *HeaderText `json:"header2Text,omitempty" yaml:"header2Text,omitempty"`
}

// Result is the scanner output for one image. It is treated as immutable
// once produced.
type Result struct {
	ID       uuid.UUID                `json:"id" yaml:"id"`
	ImageID  uuid.UUID                `json:"imageId" yaml:"imageId"`
	Serving  *Serving                 `json:"serving,omitempty" yaml:"serving,omitempty"`
	Headers  *Headers                 `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows     []Row                    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Barcodes []fill.RecognizedBarcode `json:"barcodes,omitempty" yaml:"barcodes,omitempty"`
	Texts    []fill.RecognizedText    `json:"texts,omitempty" yaml:"texts,omitempty"`
}

// NutrientCount is the number of nutrient rows, used to rank results.
func (r *Result) NutrientCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ColumnCount is 2 when any row or header occupies a second column, 1 when
// anything occupies the first, and 0 for an empty table.
func (r *Result) ColumnCount() int {
	if r == nil {
		return 0
	}
	if r.Headers != nil && (r.Headers.Header2Type != nil || r.Headers.Header2Text != nil) {
		return 2
	}
	count := 0
	for _, row := range r.Rows {
		if row.ValueText2 != nil {
			return 2
		}
		if row.ValueText1 != nil {
			count = 1
		}
	}
	if count == 0 && r.Headers != nil && (r.Headers.Header1Type != nil || r.Headers.Header1Text != nil) {
		count = 1
	}
	return count
}

// HeaderType returns the header basis of a column (1 or 2).
func (r *Result) HeaderType(column int) (HeaderType, bool) {
	if r == nil || r.Headers == nil {
		return "", false
	}
	var t *HeaderType
	var text *HeaderText
	if column == 2 {
		t, text = r.Headers.Header2Type, r.Headers.Header2Text
	} else {
		t, text = r.Headers.Header1Type, r.Headers.Header1Text
	}
	if t != nil {
		return *t, true
	}
	if text != nil && text.Type != "" {
		return text.Type, true
	}
	return "", false
}

// HeaderText returns the header text of a column (1 or 2).
func (r *Result) HeaderText(column int) *HeaderText {
	if r == nil || r.Headers == nil {
		return nil
	}
	if column == 2 {
		return r.Headers.Header2Text
	}
	return r.Headers.Header1Text
}

// Row returns the nutrient row for an attribute.
func (r *Result) Row(attr nutrition.Attribute) *Row {
	if r == nil {
		return nil
	}
	for i := range r.Rows {
		if r.Rows[i].Attribute == attr {
			return &r.Rows[i]
		}
	}
	return nil
}

// ValueText returns the value of a row at a column (1 or 2).
func (r *Result) ValueText(attr nutrition.Attribute, column int) *ValueText {
	row := r.Row(attr)
	if row == nil {
		return nil
	}
	if column == 2 {
		return row.ValueText2
	}
	return row.ValueText1
}

// ImageText anchors a recognized text of this result's image.
func (r *Result) ImageText(text fill.RecognizedText, attribute *fill.RecognizedText) fill.ImageText {
	return fill.ImageText{Text: text, AttributeText: attribute, ImageID: r.ImageID}
}
