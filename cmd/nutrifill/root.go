// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/foodform/nutrifill/internal/config"
	"github.com/foodform/nutrifill/internal/logging"
	"github.com/foodform/nutrifill/internal/prefill"
	"github.com/foodform/nutrifill/internal/tool"
)

// version is set at build time.
var version = "dev"

// app carries the state shared by the sub-commands once the root command
// has initialized.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "nutrifill",
		Short:         "Nutrition label field reconciliation",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		extractCommand(a),
		removeImageCommand(a),
		validateCommand(a),
		serveCommand(a),
	)
	return cmd
}

// initialize loads the configuration, applies flag overrides and builds the
// logger. Logs go to stderr so stdout stays reserved for snapshots and the
// MCP stdio transport.
func (a *app) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log, cmd.ErrOrStderr())
	return nil
}

// prefillSource returns the configured record source: a directory when one
// is configured, the Open Food Facts API otherwise.
func (a *app) prefillSource() prefill.Source {
	if a.cfg.Prefill.Dir != "" {
		return prefill.DirSource{Dir: a.cfg.Prefill.Dir}
	}
	return prefill.NewOFFSource(a.cfg.Prefill.OFF(), a.logger)
}

func (a *app) handlers() *tool.Handlers {
	return &tool.Handlers{
		Logger:      a.logger,
		Concurrency: a.cfg.Scan.Concurrency,
		Column:      a.cfg.Scan.Column,
		Prefill:     a.prefillSource(),
	}
}
