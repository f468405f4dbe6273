// SPDX-License-Identifier: Apache-2.0

package fill

import (
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/nutrition"
)

// UsesImage reports whether a crop of the source image should be shown for
// this Fill. Only scanned and selection Fills are image backed.
func (f Fill) UsesImage() bool {
	switch f.Kind {
	case KindScanned:
		return f.Scanned != nil
	case KindSelection:
		return f.Selection != nil && len(f.Selection.texts()) > 0
	}
	return false
}

// ImageTexts returns every text region the Fill is anchored to.
func (f Fill) ImageTexts() []ImageText {
	switch f.Kind {
	case KindScanned:
		if f.Scanned != nil {
			return []ImageText{f.Scanned.ImageText}
		}
	case KindSelection:
		if f.Selection != nil {
			return f.Selection.texts()
		}
	}
	return nil
}

// ImageIDs returns the distinct image ids referenced by the Fill, including
// those reached only through selection component texts.
func (f Fill) ImageIDs() []uuid.UUID {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	add := func(id uuid.UUID) {
		if id == uuid.Nil || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, t := range f.ImageTexts() {
		add(t.ImageID)
	}
	if f.Kind == KindBarcodeScanned && f.Barcode != nil {
		add(f.Barcode.ImageID)
	}
	return ids
}

// UsesImageID reports whether any evidence of the Fill comes from image id.
func (f Fill) UsesImageID(id uuid.UUID) bool {
	for _, candidate := range f.ImageIDs() {
		if candidate == id {
			return true
		}
	}
	return false
}

// BoundingBoxToCrop returns the region of the crop image to show for the
// Fill: the union of the evidence texts on that image. Texts read from other
// images are left out. ok is false when the Fill is not image backed.
func (f Fill) BoundingBoxToCrop() (rect Rect, ok bool) {
	imageID, ok := f.CropImageID()
	if !ok {
		return Rect{}, false
	}
	for _, t := range f.ImageTexts() {
		if t.ImageID == imageID {
			rect = rect.Union(t.BoundingBox())
		}
	}
	return rect, !rect.IsZero()
}

// CropImageID is the image a crop is taken from: the first evidence text's.
func (f Fill) CropImageID() (uuid.UUID, bool) {
	texts := f.ImageTexts()
	if !f.UsesImage() || len(texts) == 0 {
		return uuid.Nil, false
	}
	return texts[0].ImageID, true
}

// IsOverwritable reports whether a merge may silently replace the value.
func (f Fill) IsOverwritable() bool {
	return f.Kind == KindDiscardable
}

// Discarded drops the evidence while the value is kept.
func (f Fill) Discarded() Fill {
	return Discardable()
}

// AltValue returns the user-picked alternative value, if any.
func (f Fill) AltValue() *nutrition.LabelValue {
	switch {
	case f.Kind == KindScanned && f.Scanned != nil:
		return f.Scanned.AltValue
	case f.Kind == KindSelection && f.Selection != nil:
		return f.Selection.AltValue
	}
	return nil
}

// WithAltValue overrides the detected value. Fills without a value anchor are
// returned unchanged.
func (f Fill) WithAltValue(v *nutrition.LabelValue) Fill {
	switch {
	case f.Kind == KindScanned && f.Scanned != nil:
		info := *f.Scanned
		info.AltValue = v
		return Fill{Kind: KindScanned, Scanned: &info}
	case f.Kind == KindSelection && f.Selection != nil:
		info := f.Selection.clone()
		info.AltValue = v
		return Fill{Kind: KindSelection, Selection: &info}
	}
	return f
}

func (s SelectionInfo) clone() SelectionInfo {
	out := s
	out.ComponentTexts = append([]ImageText(nil), s.ComponentTexts...)
	return out
}

// AppendComponentText adds a user-tapped text. Appending to a scanned Fill
// turns it into a selection seeded with the scanned text; any other kind
// starts a fresh selection.
func (f Fill) AppendComponentText(text ImageText) Fill {
	var info SelectionInfo
	switch {
	case f.Kind == KindScanned && f.Scanned != nil:
		info.ComponentTexts = []ImageText{f.Scanned.ImageText}
		info.AltValue = f.Scanned.AltValue
	case f.Kind == KindSelection && f.Selection != nil:
		info = f.Selection.clone()
	}
	if info.ImageText != nil && info.ImageText.Same(text) {
		return Fill{Kind: KindSelection, Selection: &info}
	}
	for _, existing := range info.ComponentTexts {
		if existing.Same(text) {
			return Fill{Kind: KindSelection, Selection: &info}
		}
	}
	info.ComponentTexts = append(info.ComponentTexts, text)
	return Fill{Kind: KindSelection, Selection: &info}
}

// RemoveComponentText removes a tapped text from a selection. A selection
// left without any text becomes userInput.
func (f Fill) RemoveComponentText(text ImageText) Fill {
	if f.Kind != KindSelection || f.Selection == nil {
		return f
	}
	info := f.Selection.clone()
	if info.ImageText != nil && info.ImageText.Same(text) {
		info.ImageText = nil
	}
	kept := info.ComponentTexts[:0]
	for _, existing := range info.ComponentTexts {
		if !existing.Same(text) {
			kept = append(kept, existing)
		}
	}
	info.ComponentTexts = kept
	if len(info.texts()) == 0 {
		return UserInput()
	}
	return Fill{Kind: KindSelection, Selection: &info}
}

// PrefillFieldStrings returns the copied strings of a prefill Fill.
func (f Fill) PrefillFieldStrings() []PrefillFieldString {
	if f.Kind != KindPrefill || f.Prefill == nil {
		return nil
	}
	return f.Prefill.FieldStrings
}

// AppendPrefillFieldString adds a copied string. Any non-prefill Fill starts
// a fresh prefill Fill.
func (f Fill) AppendPrefillFieldString(s PrefillFieldString) Fill {
	existing := f.PrefillFieldStrings()
	for _, e := range existing {
		if e == s {
			return f
		}
	}
	out := make([]PrefillFieldString, 0, len(existing)+1)
	out = append(out, existing...)
	return Prefill(append(out, s)...)
}

// RemovePrefillFieldString removes a copied string. A prefill Fill left
// without strings becomes userInput.
func (f Fill) RemovePrefillFieldString(s PrefillFieldString) Fill {
	if f.Kind != KindPrefill || f.Prefill == nil {
		return f
	}
	var out []PrefillFieldString
	for _, e := range f.Prefill.FieldStrings {
		if e != s {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return UserInput()
	}
	return Prefill(out...)
}

// ReplacingSinglePrefillString rewrites the text of a prefill Fill that holds
// exactly one string, keeping its field tag. Other Fills are unchanged.
func (f Fill) ReplacingSinglePrefillString(s string) Fill {
	strs := f.PrefillFieldStrings()
	if len(strs) != 1 {
		return f
	}
	return Prefill(PrefillFieldString{String: s, Field: strs[0].Field})
}
