// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/foodform/nutrifill/internal/nutrition"
)

// Document is a raw scanner output document.
type Document struct {
	// Content is the raw document content.
	Content []byte
	Format  string
	ID      string
}

// Decoder turns one document format into scan results.
type Decoder interface {
	CanHandle(doc Document) bool
	Decode(ctx context.Context, doc Document) ([]Result, error)
	Name() string
}

// Pipeline selects the first registered decoder that can handle a document.
type Pipeline struct {
	decoders []Decoder
}

// NewPipeline creates a Pipeline with the provided decoders.
func NewPipeline(decoders ...Decoder) *Pipeline {
	return &Pipeline{decoders: decoders}
}

// DefaultPipeline registers the JSON decoder before the YAML one so that JSON
// documents are not claimed by the more permissive YAML detection.
func DefaultPipeline() *Pipeline {
	return NewPipeline(NewJSONDecoder(), NewYAMLDecoder())
}

// DecodeResult is the output of a successful pipeline run.
type DecodeResult struct {
	Results     []Result
	DecoderUsed string
}

func (p *Pipeline) Decode(ctx context.Context, doc Document) (DecodeResult, error) {
	decoder, err := p.selectDecoder(doc)
	if err != nil {
		return DecodeResult{}, err
	}
	results, err := decoder.Decode(ctx, doc)
	if err != nil {
		return DecodeResult{}, fmt.Errorf("decoder %q failed: %w", decoder.Name(), err)
	}
	return DecodeResult{Results: results, DecoderUsed: decoder.Name()}, nil
}

func (p *Pipeline) selectDecoder(doc Document) (Decoder, error) {
	for _, d := range p.decoders {
		if d.CanHandle(doc) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unsupported scan format: no decoder found for document %q (format hint: %q)", doc.ID, doc.Format)
}

// RegisteredDecoders returns the names of all registered decoders.
func (p *Pipeline) RegisteredDecoders() []string {
	names := make([]string, len(p.decoders))
	for i, d := range p.decoders {
		names[i] = d.Name()
	}
	return names
}

// resultsDocument accepts either a bare list of results or {results: [...]}.
type resultsDocument struct {
	Results []Result `yaml:"results"`
}

func unmarshalResults(content []byte) ([]Result, error) {
	trimmed := strings.TrimSpace(string(content))
	switch {
	case strings.HasPrefix(trimmed, "["), strings.HasPrefix(trimmed, "- "):
		var list []Result
		if err := yaml.Unmarshal(content, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapped resultsDocument
	if err := yaml.Unmarshal(content, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Results) > 0 {
		return wrapped.Results, nil
	}

	var single Result
	if err := yaml.Unmarshal(content, &single); err != nil {
		return nil, err
	}
	return []Result{single}, nil
}

// normalize resolves label text attributes and drops rows the vocabulary
// does not know. Results without an id get one.
func normalize(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		rows := make([]Row, 0, len(r.Rows))
		for _, row := range r.Rows {
			attr, ok := nutrition.ParseAttribute(string(row.Attribute))
			if !ok {
				continue
			}
			row.Attribute = attr
			rows = append(rows, row)
		}
		r.Rows = rows
		out = append(out, r)
	}
	return out
}

// JSONDecoder decodes scanner output serialized as JSON.
type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

func (d *JSONDecoder) Name() string {
	return "json"
}

func (d *JSONDecoder) CanHandle(doc Document) bool {
	if strings.EqualFold(doc.Format, "json") {
		return true
	}
	content := strings.TrimSpace(string(doc.Content))
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

func (d *JSONDecoder) Decode(_ context.Context, doc Document) ([]Result, error) {
	results, err := unmarshalResults(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON scan results: %w", err)
	}
	return normalize(results), nil
}

// YAMLDecoder decodes scanner output serialized as YAML.
type YAMLDecoder struct{}

func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

func (d *YAMLDecoder) Name() string {
	return "yaml"
}

func (d *YAMLDecoder) CanHandle(doc Document) bool {
	switch strings.ToLower(doc.Format) {
	case "yaml", "yml":
		return true
	}
	content := strings.TrimSpace(string(doc.Content))
	if content == "" {
		return false
	}
	first := strings.SplitN(content, "\n", 2)[0]
	return strings.HasPrefix(first, "- ") || strings.Contains(first, ":")
}

func (d *YAMLDecoder) Decode(_ context.Context, doc Document) ([]Result, error) {
	results, err := unmarshalResults(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML scan results: %w", err)
	}
	return normalize(results), nil
}
