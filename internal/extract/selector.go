// SPDX-License-Identifier: Apache-2.0

// Package extract turns scan results into field values. Every function here
// is total: missing evidence or incompatible units yield no value, never an
// error.
package extract

import (
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/scan"
)

// Selection is the outcome of choosing among the scan results of a batch.
type Selection struct {
	// Best is the result with the most nutrient rows.
	Best *scan.Result
	// Candidates are the results compatible with Best, Best first.
	Candidates []*scan.Result
	// Column is the value column extracted from, 1 or 2.
	Column int
	// Results are all results the selection was made from.
	Results []*scan.Result
}

// Select picks the best result and its compatible candidates. On equal
// nutrient counts the result encountered last wins. It reports false for an
// empty input.
func Select(results []scan.Result) (Selection, bool) {
	if len(results) == 0 {
		return Selection{}, false
	}
	all := make([]*scan.Result, len(results))
	for i := range results {
		all[i] = &results[i]
	}

	best := all[0]
	for _, r := range all[1:] {
		if r.NutrientCount() >= best.NutrientCount() {
			best = r
		}
	}

	sel := Selection{Best: best, Candidates: []*scan.Result{best}, Column: 1, Results: all}
	for _, r := range all {
		if r == best {
			continue
		}
		if r.ColumnCount() == best.ColumnCount() && headersCompatible(best, r) {
			sel.Candidates = append(sel.Candidates, r)
		}
	}
	return sel, true
}

// headersCompatible requires equal header types in every column where both
// results define one.
func headersCompatible(a, b *scan.Result) bool {
	for column := 1; column <= 2; column++ {
		ta, okA := a.HeaderType(column)
		tb, okB := b.HeaderType(column)
		if okA && okB && ta != tb {
			return false
		}
	}
	return true
}

// ColumnCount is the number of value columns of the best result.
func (s Selection) ColumnCount() int {
	if s.Best == nil {
		return 0
	}
	return s.Best.ColumnCount()
}

// WithColumn returns the selection extracting from column c, clamped to the
// columns the best result has.
func (s Selection) WithColumn(c int) Selection {
	maxColumn := s.ColumnCount()
	if maxColumn < 1 {
		maxColumn = 1
	}
	switch {
	case c < 1:
		c = 1
	case c > maxColumn:
		c = maxColumn
	}
	s.Column = c
	return s
}

// ImageIDs lists the images of every result the selection was made from.
func (s Selection) ImageIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Results))
	seen := map[uuid.UUID]bool{}
	for _, r := range s.Results {
		if seen[r.ImageID] {
			continue
		}
		seen[r.ImageID] = true
		ids = append(ids, r.ImageID)
	}
	return ids
}
