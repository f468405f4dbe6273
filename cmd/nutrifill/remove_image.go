// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/foodform/nutrifill/internal/tool"
)

func removeImageCommand(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "remove-image [snapshot] [image-id]",
		Short: "Remove an image from a snapshot and demote the fields read from it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, out, err := a.handlers().RemoveImage(cmd.Context(), nil, tool.InputRemoveImage{
				Snapshot:     string(content),
				ImageID:      args[1],
				OutputFormat: format,
			})
			if err != nil {
				return err
			}
			if !out.Found {
				a.logger.Warn("image not referenced by snapshot", "image_id", args[1])
			}
			return writeOutput(cmd, output, out.Snapshot)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the snapshot to a file instead of stdout")
	return cmd
}
