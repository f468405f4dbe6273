// SPDX-License-Identifier: Apache-2.0

package field

import (
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/fill"
)

// RemoveImage forgets an image and demotes every field whose evidence refers
// to it, directly or through any selection component, to discardable. Values
// are kept and no field is removed; cached crops are dropped. It returns the
// ids of the demoted fields.
func (s *Store) RemoveImage(id uuid.UUID) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; ok {
		delete(s.images, id)
		kept := s.imageOrder[:0]
		for _, candidate := range s.imageOrder {
			if candidate != id {
				kept = append(kept, candidate)
			}
		}
		s.imageOrder = kept
	}

	var demoted []uuid.UUID
	for _, e := range s.fields {
		if !e.value.Fill.UsesImageID(id) {
			continue
		}
		e.setValue(e.value.WithFill(e.value.Fill.Discarded()))
		demoted = append(demoted, e.id)
	}

	s.logger.Info("removed image", "image_id", id, "demoted_fields", len(demoted))
	return demoted
}

// orphanedLocked reports whether f refers to an image the store does not
// know.
func (s *Store) orphanedLocked(f fill.Fill) bool {
	for _, imageID := range f.ImageIDs() {
		if _, ok := s.images[imageID]; !ok {
			return true
		}
	}
	return false
}

// discardOrphansLocked demotes fields whose evidence refers to an image the
// store does not know.
func (s *Store) discardOrphansLocked() int {
	count := 0
	for _, e := range s.fields {
		if s.orphanedLocked(e.value.Fill) {
			e.setValue(e.value.WithFill(e.value.Fill.Discarded()))
			count++
		}
	}
	return count
}
