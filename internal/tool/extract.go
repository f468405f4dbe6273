// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the nutrition field engine as MCP tools.
package tool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/form"
	"github.com/foodform/nutrifill/internal/prefill"
	"github.com/foodform/nutrifill/internal/scan"
	"github.com/foodform/nutrifill/internal/snapshot"
)

// Handlers carries the dependencies shared by the tool handlers.
type Handlers struct {
	Logger      *slog.Logger
	Concurrency int
	// Column is used when a request does not choose one.
	Column int
	// Prefill resolves prefill ids. Requests naming one fail without it.
	Prefill prefill.Source
}

func (h *Handlers) logger() *slog.Logger {
	if h == nil || h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}

// MetadataExtractNutritionFields describes the extract_nutrition_fields tool.
var MetadataExtractNutritionFields = &mcp.Tool{
	Name: "extract_nutrition_fields",
	Description: "Extract nutrition facts fields from label scan results and merge them into a food form. " +
		"Each document holds the scanner output for one or more label images (JSON or YAML). " +
		"The scan with the most nutrient rows is used for amounts, energy, macros and micronutrients; " +
		"compatible scans contribute sizes and barcodes. Fields in an optional existing snapshot that " +
		"were typed by the user, scanned or prefilled are never overwritten; discardable fields are. " +
		"An optional prefill record is merged before the scans. Returns the merged snapshot together with a merge report.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"documents": map[string]interface{}{
				"type":        "array",
				"description": "Scanner output documents",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []string{"content"},
					"properties": map[string]interface{}{
						"content": map[string]interface{}{
							"type":        "string",
							"description": "Raw document content",
						},
						"format": map[string]interface{}{
							"type":        "string",
							"description": "Format hint. One of: json, yaml. If omitted, auto-detection is used.",
							"enum":        []string{"json", "yaml"},
						},
						"source_id": map[string]interface{}{
							"type":        "string",
							"description": "Optional identifier of the document used in error messages.",
						},
					},
				},
			},
			"snapshot": map[string]interface{}{
				"type":        "string",
				"description": "Optional existing form snapshot (YAML or JSON) to merge into.",
			},
			"prefill_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional third-party record id (for Open Food Facts, the product barcode) merged before the scans.",
			},
			"column": map[string]interface{}{
				"type":        "integer",
				"description": "Nutrition table column to extract (1 or 2). Defaults to 1.",
				"minimum":     1,
				"maximum":     2,
			},
			"output_format": map[string]interface{}{
				"type":        "string",
				"description": "Snapshot output format. One of: yaml, json. Defaults to yaml.",
				"enum":        []string{"yaml", "json"},
			},
		},
	},
}

// InputDocument is one scanner output document.
type InputDocument struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	SourceID string `json:"source_id"`
}

// InputExtractNutritionFields is the input for the ExtractNutritionFields tool.
type InputExtractNutritionFields struct {
	Documents    []InputDocument `json:"documents"`
	Snapshot     string          `json:"snapshot"`
	PrefillID    string          `json:"prefill_id"`
	Column       int             `json:"column"`
	OutputFormat string          `json:"output_format"`
}

// OutputExtractNutritionFields is the output for the ExtractNutritionFields tool.
type OutputExtractNutritionFields struct {
	// Snapshot is the merged form in the requested format.
	Snapshot string `json:"snapshot"`
	// Report summarizes what merging the scans changed.
	Report MergeSummary `json:"report"`
	// Prefill summarizes the prefill merge, if a record was found.
	Prefill *MergeSummary `json:"prefill,omitempty"`
	// DecodersUsed lists the decoder selected for each document.
	DecodersUsed []string `json:"decoders_used"`
	// Column is the column that was extracted.
	Column int `json:"column"`
	// ColumnCount is the number of columns of the best scan.
	ColumnCount int `json:"column_count"`
}

// MergeSummary is a field.MergeReport with image ids as strings.
type MergeSummary struct {
	Created   int      `json:"created"`
	Replaced  int      `json:"replaced"`
	Kept      int      `json:"kept"`
	Dropped   int      `json:"dropped"`
	Orphaned  int      `json:"orphaned"`
	Processed []string `json:"processed,omitempty"`
}

func summarize(r field.MergeReport) MergeSummary {
	s := MergeSummary{Created: r.Created, Replaced: r.Replaced, Kept: r.Kept, Dropped: r.Dropped, Orphaned: r.Orphaned}
	for _, id := range r.Processed {
		s.Processed = append(s.Processed, id.String())
	}
	return s
}

// ExtractNutritionFields decodes the documents, runs them through a scanning
// session and returns the merged snapshot.
func (h *Handlers) ExtractNutritionFields(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractNutritionFields) (*mcp.CallToolResult, OutputExtractNutritionFields, error) {
	if len(input.Documents) == 0 && input.PrefillID == "" {
		return nil, OutputExtractNutritionFields{}, fmt.Errorf("at least one document or a prefill_id is required")
	}
	if input.PrefillID != "" && (h == nil || h.Prefill == nil) {
		return nil, OutputExtractNutritionFields{}, fmt.Errorf("prefill_id given but no prefill source is configured")
	}
	format, err := snapshot.ParseFormat(input.OutputFormat)
	if err != nil {
		return nil, OutputExtractNutritionFields{}, err
	}
	logger := h.logger().With("tool", MetadataExtractNutritionFields.Name)

	store := field.NewStore(field.WithLogger(logger))
	defer store.Close()
	if input.Snapshot != "" {
		if err := restoreSnapshot(store, input.Snapshot); err != nil {
			return nil, OutputExtractNutritionFields{}, err
		}
	}

	var out OutputExtractNutritionFields
	if input.PrefillID != "" {
		if report, ok := prefill.Hydrate(ctx, h.Prefill, input.PrefillID, store, logger); ok {
			summary := summarize(report)
			out.Prefill = &summary
		}
	}

	pipeline := scan.DefaultPipeline()
	recorded := scan.StaticScanner{}
	var (
		images   []scan.Image
		decoders []string
	)
	for i, d := range input.Documents {
		if d.Content == "" {
			return nil, OutputExtractNutritionFields{}, fmt.Errorf("document %d: content is required", i)
		}
		sourceID := d.SourceID
		if sourceID == "" {
			sourceID = fmt.Sprintf("document-%d", i+1)
		}
		decoded, err := pipeline.Decode(ctx, scan.Document{Content: []byte(d.Content), Format: d.Format, ID: sourceID})
		if err != nil {
			return nil, OutputExtractNutritionFields{}, err
		}
		decoders = append(decoders, decoded.DecoderUsed)
		for _, r := range decoded.Results {
			if r.ImageID == uuid.Nil {
				r.ImageID = uuid.New()
			}
			if _, dup := recorded[r.ImageID]; !dup {
				images = append(images, scan.Image{ID: r.ImageID})
			}
			recorded[r.ImageID] = &r
		}
	}

	column := input.Column
	if column == 0 && h != nil {
		column = h.Column
	}
	opts := []form.Option{form.WithLogger(logger), form.WithColumn(column)}
	if h != nil {
		opts = append(opts, form.WithConcurrency(h.Concurrency))
	}
	session := form.NewSession(store, recorded, opts...)
	defer session.Dismiss()

	report, err := session.Process(ctx, images...)
	if err != nil {
		return nil, OutputExtractNutritionFields{}, err
	}

	data, err := snapshot.Marshal(snapshot.FromStore(store), format)
	if err != nil {
		return nil, OutputExtractNutritionFields{}, err
	}
	out.Snapshot = string(data)
	out.Report = summarize(report)
	out.DecodersUsed = decoders
	out.Column = session.Column()
	out.ColumnCount = session.ColumnCount()
	return nil, out, nil
}

func restoreSnapshot(store *field.Store, content string) error {
	snap, err := snapshot.Unmarshal([]byte(content))
	if err != nil {
		return err
	}
	return snap.Restore(store)
}
