// SPDX-License-Identifier: Apache-2.0

// Command nutrifill reconciles nutrition label scans, prefill records and
// typed values into form snapshots.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
