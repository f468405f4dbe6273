// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodform/nutrifill/internal/snapshot"
)

func validateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [snapshot files...]",
		Short: "Validate snapshots against the snapshot schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if err := snapshot.Validate(content); err != nil {
					failed++
					a.logger.Error("snapshot rejected", "file", path, "error", err)
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d snapshots are invalid", failed, len(args))
			}
			return nil
		},
	}
}
