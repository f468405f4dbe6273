// SPDX-License-Identifier: Apache-2.0

package field

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/fill"
)

// Batch is the set of values extracted from newly processed images.
type Batch struct {
	Values   []Value
	ImageIDs []uuid.UUID
}

// MergeReport summarizes what a merge did.
type MergeReport struct {
	// Created counts fields added by the merge.
	Created int `json:"created" yaml:"created"`
	// Replaced counts fields whose value was overwritten or superseded.
	Replaced int `json:"replaced" yaml:"replaced"`
	// Kept counts incoming values ignored to protect an existing value.
	Kept int `json:"kept" yaml:"kept"`
	// Dropped counts empty values and size/barcode duplicates.
	Dropped int `json:"dropped" yaml:"dropped"`
	// Orphaned counts incoming values whose image was removed before the
	// merge; they are applied as discardable.
	Orphaned int `json:"orphaned" yaml:"orphaned"`
	// Processed lists the images marked processed.
	Processed []uuid.UUID `json:"processed,omitempty" yaml:"processed,omitempty"`
}

// Merge reconciles a batch into the store:
//
//   - one-to-one kinds overwrite only a discardable or empty field;
//   - micronutrients replace any field of the same nutrient type;
//   - sizes and barcodes are appended unless their key already exists.
//
// Every image of the batch is then marked processed. Merges hold the store
// lock for their whole duration, so concurrent merges queue up.
func (s *Store) Merge(batch Batch) MergeReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(batch)
}

// Remerge replaces the outcome of an earlier merge with another batch from
// the same images, e.g. after switching the extracted column. Fields still
// holding exactly what previous produced become discardable, or are removed
// for micronutrients, sizes and barcodes; fields edited since are left alone.
func (s *Store) Remerge(previous, next Batch) MergeReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	retracted := 0
	for _, v := range previous.Values {
		for _, e := range s.fields {
			if !reflect.DeepEqual(e.value, v) {
				continue
			}
			if v.Kind == KindMicro || v.Kind == KindSize || v.Kind == KindBarcode {
				s.removeLocked(e)
			} else {
				e.setValue(e.value.WithFill(fill.Discardable()))
			}
			retracted++
			break
		}
	}
	s.logger.Debug("retracted previous extraction", "fields", retracted)
	return s.mergeLocked(next)
}

func (s *Store) mergeLocked(batch Batch) MergeReport {
	var report MergeReport
	for _, v := range batch.Values {
		if !v.Valid() || v.IsEmpty() {
			report.Dropped++
			continue
		}
		if s.orphanedLocked(v.Fill) {
			v = v.WithFill(v.Fill.Discarded())
			report.Orphaned++
		}
		switch {
		case v.Kind == KindMicro:
			if existing := s.findSlotLocked(v.Slot()); existing != nil {
				s.replaceLocked(existing, v)
				report.Replaced++
			} else {
				s.appendLocked(v)
				report.Created++
			}

		case v.Kind.IsOneToOne():
			existing := s.findSlotLocked(v.Slot())
			switch {
			case existing == nil:
				s.appendLocked(v)
				report.Created++
			case existing.value.Fill.IsOverwritable() || existing.value.IsEmpty():
				existing.setValue(v)
				report.Replaced++
			default:
				report.Kept++
			}

		case v.Kind == KindSize, v.Kind == KindBarcode:
			if s.duplicateLocked(v) != nil {
				report.Dropped++
				continue
			}
			s.appendLocked(v)
			report.Created++

		default:
			report.Dropped++
		}
	}

	for _, id := range batch.ImageIDs {
		if rec, ok := s.images[id]; ok {
			rec.Status = ImageProcessed
			report.Processed = append(report.Processed, id)
		}
	}

	s.logger.Info("merged extracted values",
		"created", report.Created,
		"replaced", report.Replaced,
		"kept", report.Kept,
		"dropped", report.Dropped,
		"orphaned", report.Orphaned,
		"images", len(report.Processed))
	return report
}
