// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/foodform/nutrifill/internal/field"
	"github.com/foodform/nutrifill/internal/snapshot"
)

// MetadataRemoveImage describes the remove_image tool.
var MetadataRemoveImage = &mcp.Tool{
	Name: "remove_image",
	Description: "Remove a label image from a food form snapshot. Fields whose value was read from the image " +
		"lose their evidence: the user-visible value is kept but the field becomes discardable, so the next " +
		"scan may replace it. No field is deleted. Returns the updated snapshot and the kinds of the affected fields.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"snapshot", "image_id"},
		"properties": map[string]interface{}{
			"snapshot": map[string]interface{}{
				"type":        "string",
				"description": "Form snapshot (YAML or JSON).",
			},
			"image_id": map[string]interface{}{
				"type":        "string",
				"description": "UUID of the image to remove.",
			},
			"output_format": map[string]interface{}{
				"type":        "string",
				"description": "Snapshot output format. One of: yaml, json. Defaults to yaml.",
				"enum":        []string{"yaml", "json"},
			},
		},
	},
}

// InputRemoveImage is the input for the RemoveImage tool.
type InputRemoveImage struct {
	Snapshot     string `json:"snapshot"`
	ImageID      string `json:"image_id"`
	OutputFormat string `json:"output_format"`
}

// OutputRemoveImage is the output for the RemoveImage tool.
type OutputRemoveImage struct {
	Snapshot string `json:"snapshot"`
	// Affected lists the kind of every demoted field.
	Affected []string `json:"affected"`
	// Found is false when the snapshot did not reference the image.
	Found bool `json:"found"`
}

// RemoveImage demotes the fields that depend on an image and drops the image
// from the snapshot.
func (h *Handlers) RemoveImage(_ context.Context, _ *mcp.CallToolRequest, input InputRemoveImage) (*mcp.CallToolResult, OutputRemoveImage, error) {
	if input.Snapshot == "" {
		return nil, OutputRemoveImage{}, fmt.Errorf("snapshot is required")
	}
	id, err := uuid.Parse(input.ImageID)
	if err != nil {
		return nil, OutputRemoveImage{}, fmt.Errorf("invalid image_id %q: %w", input.ImageID, err)
	}
	format, err := snapshot.ParseFormat(input.OutputFormat)
	if err != nil {
		return nil, OutputRemoveImage{}, err
	}

	logger := h.logger().With("tool", MetadataRemoveImage.Name)
	store := field.NewStore(field.WithLogger(logger))
	defer store.Close()
	if err := restoreSnapshot(store, input.Snapshot); err != nil {
		return nil, OutputRemoveImage{}, err
	}

	found := store.HasImage(id)
	affected := store.RemoveImage(id)
	logger.Info("removed image", "image_id", id, "found", found, "affected", len(affected))

	data, err := snapshot.Marshal(snapshot.FromStore(store), format)
	if err != nil {
		return nil, OutputRemoveImage{}, err
	}
	out := OutputRemoveImage{Snapshot: string(data), Affected: []string{}, Found: found}
	for _, a := range affected {
		if f, ok := store.Get(a); ok {
			out.Affected = append(out.Affected, string(f.Value.Kind))
		}
	}
	return nil, out, nil
}

// Register adds every tool to the server.
func Register(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server, MetadataExtractNutritionFields, h.ExtractNutritionFields)
	mcp.AddTool(server, MetadataRemoveImage, h.RemoveImage)
}
