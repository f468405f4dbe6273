// SPDX-License-Identifier: Apache-2.0

package field

import (
	"context"
	"errors"
	"image"
	"image/draw"

	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/fill"
)

// ErrStaleCrop is returned to waiters of a crop whose field changed its Fill
// before the crop finished.
var ErrStaleCrop = errors.New("crop discarded: field evidence changed")

// ImageSource loads the decoded image a crop is cut from.
type ImageSource interface {
	Image(ctx context.Context, id uuid.UUID) (image.Image, error)
}

// ImageSourceFunc adapts a function to the ImageSource interface.
type ImageSourceFunc func(ctx context.Context, id uuid.UUID) (image.Image, error)

func (f ImageSourceFunc) Image(ctx context.Context, id uuid.UUID) (image.Image, error) {
	return f(ctx, id)
}

// CropFuture is the pending result of a crop request.
type CropFuture struct {
	done chan struct{}
	img  image.Image
	err  error
}

func newCropFuture() *CropFuture {
	return &CropFuture{done: make(chan struct{})}
}

func resolvedCrop(img image.Image, err error) *CropFuture {
	f := newCropFuture()
	f.resolve(img, err)
	return f
}

func (f *CropFuture) resolve(img image.Image, err error) {
	f.img, f.err = img, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *CropFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the crop is available or ctx ends. A nil image with a nil
// error means the field has no image evidence to show.
func (f *CropFuture) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-f.done:
		return f.img, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RequestCrop returns the cropped evidence image of a field. A cached crop is
// returned immediately; while a crop is being computed further requests share
// the same future instead of starting another one.
func (s *Store) RequestCrop(id uuid.UUID) *CropFuture {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return resolvedCrop(nil, ErrNotFound)
	}
	f := e.value.Fill
	if !f.UsesImage() {
		return resolvedCrop(nil, nil)
	}
	if e.cropped != nil {
		return resolvedCrop(e.cropped, nil)
	}
	if e.isCropping && e.pending != nil {
		return e.pending
	}
	imageID, okImage := f.CropImageID()
	rect, okRect := f.BoundingBoxToCrop()
	if s.source == nil || !okImage || !okRect {
		return resolvedCrop(nil, nil)
	}

	fut := newCropFuture()
	e.isCropping = true
	e.pending = fut
	go s.crop(e.id, e.generation, imageID, rect, fut)
	return fut
}

func (s *Store) crop(id uuid.UUID, generation uint64, imageID uuid.UUID, rect fill.Rect, fut *CropFuture) {
	img, err := s.source.Image(s.ctx, imageID)
	var cropped image.Image
	if err != nil {
		s.logger.Warn("crop image load failed", "field_id", id, "image_id", imageID, "error", err)
	} else {
		cropped = CropImage(img, rect)
	}

	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok || e.generation != generation {
		s.mu.Unlock()
		fut.resolve(nil, ErrStaleCrop)
		return
	}
	e.cropped = cropped
	e.isCropping = false
	e.pending = nil
	s.mu.Unlock()

	fut.resolve(cropped, err)
}

// CropImage cuts the normalized rect out of img. It returns nil when the
// rect does not overlap the image.
func CropImage(img image.Image, rect fill.Rect) image.Image {
	if img == nil || rect.IsZero() {
		return nil
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	r := image.Rect(
		b.Min.X+int(rect.X*w),
		b.Min.Y+int(rect.Y*h),
		b.Min.X+int((rect.X+rect.Width)*w+0.5),
		b.Min.Y+int((rect.Y+rect.Height)*h+0.5),
	).Intersect(b)
	if r.Empty() {
		return nil
	}
	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
