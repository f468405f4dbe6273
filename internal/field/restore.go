// SPDX-License-Identifier: Apache-2.0

package field

import (
	"fmt"

	"github.com/google/uuid"
)

// Restore replaces the store content with previously saved values, e.g. when
// an existing food is opened for editing. Restored images count as processed.
// Values referring to images that are not listed lose their evidence.
func (s *Store) Restore(values []Value, imageIDs []uuid.UUID) error {
	for i, v := range values {
		if !v.Valid() {
			return fmt.Errorf("restore value %d (%s): %w", i, v.Kind, ErrInvalidValue)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.fields {
		e.invalidateCrop()
	}
	s.fields = nil
	s.byID = map[uuid.UUID]*entry{}
	s.images = map[uuid.UUID]*ImageRecord{}
	s.imageOrder = nil

	for _, id := range imageIDs {
		s.addImageLocked(id).Status = ImageProcessed
	}
	skipped := 0
	for _, v := range values {
		if s.duplicateLocked(v) != nil {
			skipped++
			continue
		}
		s.appendLocked(v)
	}
	orphaned := s.discardOrphansLocked()

	s.logger.Info("restored fields",
		"fields", len(s.fields),
		"images", len(s.imageOrder),
		"skipped_duplicates", skipped,
		"orphaned", orphaned)
	return nil
}
