// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
)

// Barcodes lists the barcodes of every candidate, best first.
func Barcodes(sel Selection) []field.Value {
	var out []field.Value
	for _, r := range sel.Candidates {
		for _, b := range r.Barcodes {
			if b.Payload == "" {
				continue
			}
			out = append(out, field.NewBarcode(b.Payload, b.Symbology, fill.BarcodeScanned(b, r.ImageID)))
		}
	}
	return out
}

// Extract derives the batch of values a selection yields. One-to-one values
// and micronutrients come from the best result; sizes and barcodes are
// aggregated over the candidates. Every selected-from image is part of the
// batch.
func Extract(sel Selection) field.Batch {
	batch := field.Batch{ImageIDs: sel.ImageIDs()}
	r := sel.Best
	if r == nil {
		return batch
	}
	column := sel.Column
	if column < 1 {
		column = 1
	}

	add := func(v *field.Value) {
		if v != nil {
			batch.Values = append(batch.Values, *v)
		}
	}
	add(Amount(r, column))
	add(Serving(r, column))
	add(Energy(r, column))
	for _, m := range nutrition.Macros {
		add(Macro(r, column, m))
	}
	add(Density(r, column))
	batch.Values = append(batch.Values, Micros(r, column)...)
	batch.Values = append(batch.Values, AggregateSizes(sel)...)
	batch.Values = append(batch.Values, Barcodes(sel)...)
	return batch
}
