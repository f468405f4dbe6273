// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/fill"
)

// Image is a photographed label handed to the external collaborators.
type Image struct {
	ID   uuid.UUID
	Data []byte
}

// Scanner runs label detection on one image. Failures are not fatal to the
// form; callers log them and treat the image as unscanned.
type Scanner interface {
	Scan(ctx context.Context, img Image) (*Result, error)
}

// BarcodeDetector finds barcodes on one image.
type BarcodeDetector interface {
	Detect(ctx context.Context, img Image) ([]fill.RecognizedBarcode, error)
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(ctx context.Context, img Image) (*Result, error)

func (f ScannerFunc) Scan(ctx context.Context, img Image) (*Result, error) {
	return f(ctx, img)
}

// BarcodeDetectorFunc adapts a function to the BarcodeDetector interface.
type BarcodeDetectorFunc func(ctx context.Context, img Image) ([]fill.RecognizedBarcode, error)

func (f BarcodeDetectorFunc) Detect(ctx context.Context, img Image) ([]fill.RecognizedBarcode, error) {
	return f(ctx, img)
}

// StaticScanner serves previously produced results keyed by image id. It is
// used when scanner output was recorded as documents.
type StaticScanner map[uuid.UUID]*Result

func (s StaticScanner) Scan(_ context.Context, img Image) (*Result, error) {
	r, ok := s[img.ID]
	if !ok {
		return nil, &NoResultError{ImageID: img.ID}
	}
	return r, nil
}

// NoResultError reports an image the scanner produced nothing for.
type NoResultError struct {
	ImageID uuid.UUID
}

func (e *NoResultError) Error() string {
	return "no scan result for image " + e.ImageID.String()
}
