// SPDX-License-Identifier: Apache-2.0

package fill

import (
	"math"

	"github.com/google/uuid"
)

// NullTextID marks a value that was computed by the scanner rather than read
// from a text region. Values anchored to it have no auditable source.
var NullTextID = uuid.Nil

// Rect is a bounding box in normalized image coordinates (0..1).
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (r Rect) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both r and o. A zero rect is
// treated as absent.
func (r Rect) Union(o Rect) Rect {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// RecognizedText is a single text region detected by the scanner.
type RecognizedText struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	String     string    `json:"string" yaml:"string"`
	Rect       Rect      `json:"rect" yaml:"rect"`
	Candidates []string  `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// IsNull reports whether the text is the sentinel of a computed value.
func (t RecognizedText) IsNull() bool {
	return t.ID == NullTextID
}

// ImageText is the addressable unit of evidence: a value region, the label
// region it belongs to, and the image both were read from.
type ImageText struct {
	Text            RecognizedText  `json:"text" yaml:"text"`
	AttributeText   *RecognizedText `json:"attributeText,omitempty" yaml:"attributeText,omitempty"`
	ImageID         uuid.UUID       `json:"imageId" yaml:"imageId"`
	PickedCandidate string          `json:"pickedCandidate,omitempty" yaml:"pickedCandidate,omitempty"`
}

// BoundingBox unions the value region with its attribute region when they
// are different texts.
func (t ImageText) BoundingBox() Rect {
	if t.AttributeText == nil || t.AttributeText.ID == t.Text.ID {
		return t.Text.Rect
	}
	return t.Text.Rect.Union(t.AttributeText.Rect)
}

// Same reports whether two image texts point at the same region.
func (t ImageText) Same(o ImageText) bool {
	return t.Text.ID == o.Text.ID && t.ImageID == o.ImageID
}

// RecognizedBarcode is a barcode found on an image or typed by the user.
type RecognizedBarcode struct {
	Payload   string `json:"payload" yaml:"payload"`
	Symbology string `json:"symbology" yaml:"symbology"`
	Rect      Rect   `json:"rect,omitzero" yaml:"rect,omitempty"`
}
