// SPDX-License-Identifier: Apache-2.0

// Package form drives a scanning session: images are scanned in the
// background, their results extracted and merged into the form's store.
package form

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/foodform/nutrifill/internal/extract"
	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/scan"
)

// DefaultConcurrency bounds the number of images scanned at once.
const DefaultConcurrency = 4

// Session scans images for one form. Every task it starts is cancelled by
// Dismiss.
type Session struct {
	store    *field.Store
	scanner  scan.Scanner
	barcodes scan.BarcodeDetector
	logger   *slog.Logger

	concurrency int
	column      int

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	selection *extract.Selection
	batch     field.Batch
}

// Option configures a Session.
type Option func(*Session)

func WithBarcodeDetector(d scan.BarcodeDetector) Option {
	return func(s *Session) { s.barcodes = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConcurrency bounds parallel scans; values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithColumn sets the column extracted by default.
func WithColumn(c int) Option {
	return func(s *Session) {
		if c > 0 {
			s.column = c
		}
	}
}

// NewSession creates a session populating store from scanner output.
func NewSession(store *field.Store, scanner scan.Scanner, opts ...Option) *Session {
	s := &Session{
		store:       store,
		scanner:     scanner,
		logger:      slog.New(slog.DiscardHandler),
		concurrency: DefaultConcurrency,
		column:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "form")
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Store returns the store the session fills.
func (s *Session) Store() *field.Store {
	return s.store
}

// Process registers and scans images, then extracts every scanned image not
// yet processed and merges the values as one batch. Scan failures are logged
// and leave the image failed. It returns an error only when the session was
// dismissed or ctx ended.
func (s *Session) Process(ctx context.Context, images ...scan.Image) (field.MergeReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	for _, img := range images {
		s.store.AddImage(img.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, img := range images {
		g.Go(func() error {
			s.scanImage(gctx, img)
			return gctx.Err()
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.logger.Info("scan session cancelled", "images", len(images))
		return field.MergeReport{}, err
	}
	return s.extractPending(), nil
}

func (s *Session) scanImage(ctx context.Context, img scan.Image) {
	result, err := s.scanner.Scan(ctx, img)
	if err != nil {
		s.logger.Warn("scan failed", "image_id", img.ID, "error", err)
		s.store.MarkImageFailed(img.ID)
		return
	}
	if result == nil {
		s.store.MarkImageFailed(img.ID)
		return
	}

	r := *result
	if r.ImageID == uuid.Nil {
		r.ImageID = img.ID
	}
	if s.barcodes != nil {
		detected, err := s.barcodes.Detect(ctx, img)
		if err != nil {
			s.logger.Warn("barcode detection failed", "image_id", img.ID, "error", err)
		} else {
			r.Barcodes = mergeBarcodes(r.Barcodes, detected)
		}
	}
	if ctx.Err() != nil {
		return
	}
	if !s.store.SetScanResult(img.ID, &r) {
		s.logger.Debug("dropping result of removed image", "image_id", img.ID)
		return
	}
	s.logger.Debug("scanned image", "image_id", img.ID, "rows", r.NutrientCount(), "barcodes", len(r.Barcodes))
}

func mergeBarcodes(existing, detected []fill.RecognizedBarcode) []fill.RecognizedBarcode {
	out := append([]fill.RecognizedBarcode(nil), existing...)
	seen := map[string]bool{}
	for _, b := range existing {
		seen[b.Payload] = true
	}
	for _, b := range detected {
		if b.Payload == "" || seen[b.Payload] {
			continue
		}
		seen[b.Payload] = true
		out = append(out, b)
	}
	return out
}

func (s *Session) extractPending() field.MergeReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := extract.Select(s.store.PendingResults())
	if !ok {
		return field.MergeReport{}
	}
	sel = sel.WithColumn(s.column)
	batch := extract.Extract(sel)
	s.selection, s.batch = &sel, batch

	s.logger.Info("extracting scan results",
		"results", len(sel.Results),
		"candidates", len(sel.Candidates),
		"column", sel.Column)
	return s.store.Merge(batch)
}

// Column is the column the latest extraction used.
func (s *Session) Column() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection != nil {
		return s.selection.Column
	}
	return s.column
}

// ColumnCount is the number of columns of the latest best result.
func (s *Session) ColumnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return 0
	}
	return s.selection.ColumnCount()
}

// SetColumn re-extracts the latest batch at column c, replacing the values
// it produced that were not edited since. It reports false when there is
// nothing to re-extract or the column does not change.
func (s *Session) SetColumn(c int) (field.MergeReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.column = c
	if s.selection == nil {
		return field.MergeReport{}, false
	}
	sel := s.selection.WithColumn(c)
	if sel.Column == s.selection.Column {
		return field.MergeReport{}, false
	}
	batch := extract.Extract(sel)
	report := s.store.Remerge(s.batch, batch)
	s.selection, s.batch = &sel, batch
	s.logger.Info("switched extracted column", "column", sel.Column)
	return report, true
}

// Dismiss cancels every task the session started.
func (s *Session) Dismiss() {
	s.cancel()
	s.logger.Info("scan session dismissed")
}
