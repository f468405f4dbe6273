// SPDX-License-Identifier: Apache-2.0

// Package snapshot persists the fields of a form together with their
// provenance and the images they refer to.
package snapshot

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/field"
)

// Version is the snapshot format version written by this package.
const Version = 1

// Format is a snapshot serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported snapshot format %q", s)
}

// Snapshot is the serializable state of a form.
type Snapshot struct {
	Version  int           `json:"version" yaml:"version"`
	Values   []field.Value `json:"values" yaml:"values"`
	ImageIDs []uuid.UUID   `json:"imageIds,omitempty" yaml:"imageIds,omitempty"`
}

// ErrInvalid wraps schema violations.
var ErrInvalid = errors.New("invalid snapshot")

//go:embed snapshot.cue
var schemaSource string

// FromStore captures the fields and images of a store.
func FromStore(s *field.Store) *Snapshot {
	values := s.Values()
	if values == nil {
		values = []field.Value{}
	}
	return &Snapshot{Version: Version, Values: values, ImageIDs: s.ImageIDs()}
}

// Restore replaces the content of store with the snapshot.
func (s *Snapshot) Restore(store *field.Store) error {
	if s.Version != Version {
		return fmt.Errorf("restore snapshot: version %d: %w", s.Version, ErrInvalid)
	}
	if err := store.Restore(s.Values, s.ImageIDs); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// Marshal encodes a snapshot.
func Marshal(s *Snapshot, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = yaml.MarshalWithOptions(s, yaml.JSON())
	case FormatYAML, "":
		data, err = yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal validates and decodes a YAML or JSON snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Validate checks a YAML or JSON document against the #Snapshot schema.
func Validate(data []byte) error {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("snapshot.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Snapshot"))

	value := ctx.CompileBytes(doc, cue.Filename("snapshot.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
