// SPDX-License-Identifier: Apache-2.0

package field

import (
	"errors"
	"image"
	"reflect"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("field not found")
	ErrDuplicate    = errors.New("duplicate field")
	ErrWrongKind    = errors.New("wrong field kind")
	ErrInvalidValue = errors.New("invalid field value")
)

// Field is a read-only view of a field held by a Store.
type Field struct {
	ID         uuid.UUID
	Value      Value
	Cropped    image.Image
	IsCropping bool
}

// entry is the mutable field owned by a Store. It is only touched with the
// store lock held.
type entry struct {
	id    uuid.UUID
	value Value

	cropped    image.Image
	isCropping bool
	pending    *CropFuture
	// generation changes whenever the Fill changes; crop results computed
	// for an older generation are discarded.
	generation uint64
}

func newEntry(v Value) *entry {
	return &entry{id: uuid.New(), value: v}
}

func (e *entry) view() Field {
	return Field{ID: e.id, Value: e.value, Cropped: e.cropped, IsCropping: e.isCropping}
}

// setValue replaces the value and drops the crop cache when the Fill moved.
func (e *entry) setValue(v Value) {
	fillChanged := !reflect.DeepEqual(e.value.Fill, v.Fill)
	e.value = v
	if fillChanged {
		e.invalidateCrop()
	}
}

func (e *entry) invalidateCrop() {
	e.generation++
	e.cropped = nil
	e.isCropping = false
	e.pending = nil
}
