// SPDX-License-Identifier: Apache-2.0

// Package field holds the live set of nutrition fields of a food form and the
// algorithms that populate, merge and invalidate them.
package field

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/fill"
	"github.com/foodform/nutrifill/internal/nutrition"
	"github.com/foodform/nutrifill/internal/scan"
)

// ImageStatus tracks an image through scanning and extraction.
type ImageStatus string

const (
	ImagePending   ImageStatus = "pending"
	ImageScanned   ImageStatus = "scanned"
	ImageProcessed ImageStatus = "processed"
	ImageFailed    ImageStatus = "failed"
)

// ImageRecord is a known image and its scan output.
type ImageRecord struct {
	ID     uuid.UUID
	Status ImageStatus
	Result *scan.Result
}

// Store is the single owner of a form's fields and images. Every read and
// write goes through its lock, so merges are applied one at a time.
type Store struct {
	mu sync.Mutex

	fields []*entry
	byID   map[uuid.UUID]*entry

	images     map[uuid.UUID]*ImageRecord
	imageOrder []uuid.UUID

	source ImageSource
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger; the store logs under module=field.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithImageSource sets where crop requests load images from.
func WithImageSource(src ImageSource) Option {
	return func(s *Store) {
		s.source = src
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:   map[uuid.UUID]*entry{},
		images: map[uuid.UUID]*ImageRecord{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "field")
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Close cancels in-flight crop work.
func (s *Store) Close() {
	s.cancel()
}

// ---------------------------------------------------------------------------
// images
// ---------------------------------------------------------------------------

// AddImage registers an image as pending. Registering a known image is a no-op.
func (s *Store) AddImage(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addImageLocked(id)
}

func (s *Store) addImageLocked(id uuid.UUID) *ImageRecord {
	if rec, ok := s.images[id]; ok {
		return rec
	}
	rec := &ImageRecord{ID: id, Status: ImagePending}
	s.images[id] = rec
	s.imageOrder = append(s.imageOrder, id)
	return rec
}

// SetScanResult stores the scanner output of an image and marks it scanned.
// Results for images removed meanwhile are ignored.
func (s *Store) SetScanResult(id uuid.UUID, result *scan.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.images[id]
	if !ok {
		return false
	}
	rec.Result = result
	rec.Status = ImageScanned
	return true
}

// MarkImageFailed records that scanning an image failed.
func (s *Store) MarkImageFailed(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.images[id]; ok {
		rec.Status = ImageFailed
	}
}

// Images returns the known images in registration order.
func (s *Store) Images() []ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ImageRecord, 0, len(s.imageOrder))
	for _, id := range s.imageOrder {
		out = append(out, *s.images[id])
	}
	return out
}

// ImageIDs returns the known image ids in registration order.
func (s *Store) ImageIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.imageOrder...)
}

// HasImage reports whether the image is known.
func (s *Store) HasImage(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.images[id]
	return ok
}

// PendingResults returns scan results not yet offered for extraction, in
// registration order.
func (s *Store) PendingResults() []scan.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []scan.Result
	for _, id := range s.imageOrder {
		rec := s.images[id]
		if rec.Status == ImageScanned && rec.Result != nil {
			out = append(out, *rec.Result)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

// Get returns the field with the given id.
func (s *Store) Get(id uuid.UUID) (Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return Field{}, false
	}
	return e.view(), true
}

func (s *Store) slotField(slot Slot) (Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.findSlotLocked(slot); e != nil {
		return e.view(), true
	}
	return Field{}, false
}

func (s *Store) Amount() (Field, bool)  { return s.slotField(Slot{Kind: KindAmount}) }
func (s *Store) Serving() (Field, bool) { return s.slotField(Slot{Kind: KindServing}) }
func (s *Store) Energy() (Field, bool)  { return s.slotField(Slot{Kind: KindEnergy}) }
func (s *Store) Density() (Field, bool) { return s.slotField(Slot{Kind: KindDensity}) }
func (s *Store) Name() (Field, bool)    { return s.slotField(Slot{Kind: KindName}) }
func (s *Store) Detail() (Field, bool)  { return s.slotField(Slot{Kind: KindDetail}) }
func (s *Store) Brand() (Field, bool)   { return s.slotField(Slot{Kind: KindBrand}) }

func (s *Store) Macro(m nutrition.Macro) (Field, bool) {
	return s.slotField(Slot{Kind: KindMacro, Macro: m})
}

func (s *Store) Micro(n nutrition.NutrientType) (Field, bool) {
	return s.slotField(Slot{Kind: KindMicro, Nutrient: n})
}

func (s *Store) ofKind(kind Kind) []Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Field
	for _, e := range s.fields {
		if e.value.Kind == kind {
			out = append(out, e.view())
		}
	}
	return out
}

func (s *Store) Sizes() []Field    { return s.ofKind(KindSize) }
func (s *Store) Barcodes() []Field { return s.ofKind(KindBarcode) }
func (s *Store) Micros() []Field   { return s.ofKind(KindMicro) }

// SizesByPrefix splits sizes into plain ones and those with a volume prefix.
func (s *Store) SizesByPrefix() (standard, volumePrefixed []Field) {
	for _, f := range s.Sizes() {
		if f.Value.Size != nil && f.Value.Size.VolumePrefixUnit != nutrition.UnitNone {
			volumePrefixed = append(volumePrefixed, f)
		} else {
			standard = append(standard, f)
		}
	}
	return standard, volumePrefixed
}

// MicrosByCategory groups micronutrient fields by nutrient category.
func (s *Store) MicrosByCategory() map[nutrition.Category][]Field {
	out := map[nutrition.Category][]Field{}
	for _, f := range s.Micros() {
		if f.Value.Micro == nil {
			continue
		}
		cat := f.Value.Micro.Nutrient.Category()
		out[cat] = append(out[cat], f)
	}
	return out
}

// All returns every field in presentation order.
func (s *Store) All() []Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := s.orderedLocked()
	out := make([]Field, len(ordered))
	for i, e := range ordered {
		out[i] = e.view()
	}
	return out
}

// Values returns every field value in presentation order.
func (s *Store) Values() []Value {
	fields := s.All()
	out := make([]Value, len(fields))
	for i, f := range fields {
		out[i] = f.Value
	}
	return out
}

var kindRank = map[Kind]int{
	KindName: 0, KindDetail: 1, KindBrand: 2,
	KindAmount: 3, KindServing: 4, KindEnergy: 5, KindMacro: 6,
	KindDensity: 7, KindMicro: 8, KindSize: 9, KindBarcode: 10,
}

var macroRank = map[nutrition.Macro]int{nutrition.MacroCarb: 0, nutrition.MacroFat: 1, nutrition.MacroProtein: 2}

func (s *Store) orderedLocked() []*entry {
	ordered := append([]*entry(nil), s.fields...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].value, ordered[j].value
		if kindRank[a.Kind] != kindRank[b.Kind] {
			return kindRank[a.Kind] < kindRank[b.Kind]
		}
		if a.Kind == KindMacro && a.Macro != nil && b.Macro != nil {
			return macroRank[a.Macro.Macro] < macroRank[b.Macro.Macro]
		}
		return false
	})
	return ordered
}

// ---------------------------------------------------------------------------
// lookups (lock held)
// ---------------------------------------------------------------------------

func (s *Store) findSlotLocked(slot Slot) *entry {
	for _, e := range s.fields {
		if e.value.Slot() == slot {
			return e
		}
	}
	return nil
}

func (s *Store) findSizeLocked(key SizeKey) *entry {
	for _, e := range s.fields {
		if k, ok := e.value.SizeKey(); ok && k == key {
			return e
		}
	}
	return nil
}

func (s *Store) findBarcodeLocked(payload string) *entry {
	for _, e := range s.fields {
		if k, ok := e.value.BarcodeKey(); ok && k == payload {
			return e
		}
	}
	return nil
}

// duplicateLocked returns the field v would collide with.
func (s *Store) duplicateLocked(v Value) *entry {
	switch v.Kind {
	case KindSize:
		key, _ := v.SizeKey()
		return s.findSizeLocked(key)
	case KindBarcode:
		key, _ := v.BarcodeKey()
		return s.findBarcodeLocked(key)
	default:
		return s.findSlotLocked(v.Slot())
	}
}

func (s *Store) appendLocked(v Value) *entry {
	e := newEntry(v)
	s.fields = append(s.fields, e)
	s.byID[e.id] = e
	return e
}

func (s *Store) replaceLocked(old *entry, v Value) *entry {
	e := newEntry(v)
	for i, candidate := range s.fields {
		if candidate == old {
			s.fields[i] = e
			break
		}
	}
	delete(s.byID, old.id)
	s.byID[e.id] = e
	return e
}

func (s *Store) removeLocked(target *entry) {
	kept := s.fields[:0]
	for _, e := range s.fields {
		if e != target {
			kept = append(kept, e)
		}
	}
	s.fields = kept
	delete(s.byID, target.id)
}

// ---------------------------------------------------------------------------
// user operations
// ---------------------------------------------------------------------------

// Add inserts a new field, enforcing the uniqueness of one-to-one slots,
// nutrient types, size keys and barcode payloads.
func (s *Store) Add(v Value) (Field, error) {
	if !v.Valid() {
		return Field{}, fmt.Errorf("add %s: %w", v.Kind, ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if dup := s.duplicateLocked(v); dup != nil {
		return Field{}, fmt.Errorf("add %s: %w", v.Kind, ErrDuplicate)
	}
	return s.appendLocked(v).view(), nil
}

// AddSize adds a size typed by the user.
func (s *Store) AddSize(size Size) (Field, error) {
	return s.Add(NewSize(size, fill.UserInput()))
}

// AddBarcode adds a barcode typed by the user.
func (s *Store) AddBarcode(payload, symbology string) (Field, error) {
	return s.Add(NewBarcode(payload, symbology, fill.UserInput()))
}

// EnterValue stores a value typed by the user into its one-to-one or
// nutrient slot, creating the field on first entry. The Fill becomes
// userInput.
func (s *Store) EnterValue(v Value) (Field, error) {
	v.Fill = fill.UserInput()
	if !v.Valid() || !(v.Kind.IsOneToOne() || v.Kind == KindMicro) {
		return Field{}, fmt.Errorf("enter %s: %w", v.Kind, ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.findSlotLocked(v.Slot()); e != nil {
		e.setValue(v)
		return e.view(), nil
	}
	return s.appendLocked(v).view(), nil
}

// SetUserValue stores a value typed by the user into an existing field. The
// Fill becomes userInput.
func (s *Store) SetUserValue(id uuid.UUID, v Value) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return Field{}, fmt.Errorf("set %s: %w", id, ErrNotFound)
	}
	if e.value.Kind != v.Kind {
		return Field{}, fmt.Errorf("set %s: %s into %s: %w", id, v.Kind, e.value.Kind, ErrWrongKind)
	}
	v.Fill = fill.UserInput()
	if !v.Valid() {
		return Field{}, fmt.Errorf("set %s: %w", id, ErrInvalidValue)
	}
	if dup := s.duplicateLocked(v); dup != nil && dup != e {
		return Field{}, fmt.Errorf("set %s: %w", id, ErrDuplicate)
	}
	e.setValue(v)
	return e.view(), nil
}

// ClearField empties a field's content; its Fill is reset with it.
func (s *Store) ClearField(id uuid.UUID) (Field, error) {
	return s.update(id, func(v Value) (Value, error) {
		return v.Cleared(), nil
	})
}

// RemoveField deletes a size, barcode or micronutrient field. One-to-one
// fields are cleared, never removed.
func (s *Store) RemoveField(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	if e.value.Kind.IsOneToOne() {
		return fmt.Errorf("remove %s: %s fields cannot be removed: %w", id, e.value.Kind, ErrWrongKind)
	}
	s.removeLocked(e)
	return nil
}

// update applies fn to a field's value under the lock.
func (s *Store) update(id uuid.UUID, fn func(Value) (Value, error)) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return Field{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	next, err := fn(e.value)
	if err != nil {
		return Field{}, err
	}
	e.setValue(next)
	return e.view(), nil
}

// AppendComponentText records a text the user tapped as evidence for the
// field. A scanned field becomes a selection.
func (s *Store) AppendComponentText(id uuid.UUID, text fill.ImageText) (Field, error) {
	return s.update(id, func(v Value) (Value, error) {
		return v.WithFill(v.Fill.AppendComponentText(text)), nil
	})
}

// RemoveComponentText drops a tapped text from the field's selection.
func (s *Store) RemoveComponentText(id uuid.UUID, text fill.ImageText) (Field, error) {
	return s.update(id, func(v Value) (Value, error) {
		return v.WithFill(v.Fill.RemoveComponentText(text)), nil
	})
}

// AppendPrefillFieldString adds a copied prefill string to a text field and
// rebuilds its content from the strings.
func (s *Store) AppendPrefillFieldString(id uuid.UUID, str fill.PrefillFieldString) (Field, error) {
	return s.update(id, func(v Value) (Value, error) {
		if v.String == nil {
			return v, fmt.Errorf("append prefill string to %s: %w", v.Kind, ErrWrongKind)
		}
		return joinPrefill(v, v.Fill.AppendPrefillFieldString(str)), nil
	})
}

// RemovePrefillFieldString removes a copied prefill string from a text field.
func (s *Store) RemovePrefillFieldString(id uuid.UUID, str fill.PrefillFieldString) (Field, error) {
	return s.update(id, func(v Value) (Value, error) {
		if v.String == nil {
			return v, fmt.Errorf("remove prefill string from %s: %w", v.Kind, ErrWrongKind)
		}
		return joinPrefill(v, v.Fill.RemovePrefillFieldString(str)), nil
	})
}

// ReplaceSinglePrefillString applies a minor correction to a text field
// filled from a single prefill string.
func (s *Store) ReplaceSinglePrefillString(id uuid.UUID, str string) (Field, error) {
	return s.update(id, func(v Value) (Value, error) {
		if v.String == nil {
			return v, fmt.Errorf("replace prefill string of %s: %w", v.Kind, ErrWrongKind)
		}
		next := v.Fill.ReplacingSinglePrefillString(str)
		if next.Kind != fill.KindPrefill {
			return v, nil
		}
		v.String = &StringValue{String: str}
		return v.WithFill(next), nil
	})
}

func joinPrefill(v Value, f fill.Fill) Value {
	strs := f.PrefillFieldStrings()
	if len(strs) == 0 {
		return v.Cleared()
	}
	joined := strs[0].String
	for _, s := range strs[1:] {
		joined += " " + s.String
	}
	v.String = &StringValue{String: joined}
	return v.WithFill(f)
}
