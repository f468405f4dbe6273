// SPDX-License-Identifier: Apache-2.0

package prefill

import (
	"context"
	"log/slog"

	"github.com/foodform/nutrifill/internal/field"
)

// Hydrate fetches a record and merges its values into store. A failed fetch
// is logged and leaves the form untouched; it reports whether anything was
// merged.
func Hydrate(ctx context.Context, source Source, id string, store *field.Store, logger *slog.Logger) (field.MergeReport, bool) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("module", "prefill")
	if source == nil {
		return field.MergeReport{}, false
	}

	record, err := source.Fetch(ctx, id)
	if err != nil {
		logger.Warn("prefill unavailable", "id", id, "error", err)
		return field.MergeReport{}, false
	}
	values := Values(record)
	report := store.Merge(field.Batch{Values: values})
	logger.Info("prefilled form", "id", id, "source", record.Source, "values", len(values))
	return report, true
}
