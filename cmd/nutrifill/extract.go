// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foodform/nutrifill/internal/tool"
)

type extractOptions struct {
	snapshot  string
	prefillID string
	column    int
	format    string
	output    string
}

func extractCommand(a *app) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [scan-result files...]",
		Short: "Extract nutrition fields from scan results into a snapshot",
		Long: `Extract decodes scanner output files (JSON or YAML), selects the best scan,
extracts its fields and merges them into a form snapshot. The snapshot is
written to stdout unless --output is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.prefillID == "" {
				return fmt.Errorf("at least one scan-result file or --prefill is required")
			}
			input := tool.InputExtractNutritionFields{
				PrefillID:    opts.prefillID,
				Column:       opts.column,
				OutputFormat: opts.format,
			}
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				input.Documents = append(input.Documents, tool.InputDocument{
					Content:  string(content),
					Format:   formatFromExt(path),
					SourceID: path,
				})
			}
			if opts.snapshot != "" {
				content, err := os.ReadFile(opts.snapshot)
				if err != nil {
					return err
				}
				input.Snapshot = string(content)
			}

			_, out, err := a.handlers().ExtractNutritionFields(cmd.Context(), nil, input)
			if err != nil {
				return err
			}
			a.logger.Info("extracted nutrition fields",
				"created", out.Report.Created,
				"replaced", out.Report.Replaced,
				"kept", out.Report.Kept,
				"dropped", out.Report.Dropped,
				"column", out.Column,
				"columns", out.ColumnCount)
			return writeOutput(cmd, opts.output, out.Snapshot)
		},
	}
	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Existing snapshot to merge into")
	cmd.Flags().StringVarP(&opts.prefillID, "prefill", "p", "", "Prefill record id (a barcode for Open Food Facts)")
	cmd.Flags().IntVarP(&opts.column, "column", "c", 0, "Nutrition table column: 1 or 2 (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "yaml", "Output format: yaml, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the snapshot to a file instead of stdout")
	return cmd
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
