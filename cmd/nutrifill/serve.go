// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/foodform/nutrifill/internal/tool"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the nutrition field tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := mcp.NewServer(&mcp.Implementation{Name: "nutrifill", Version: version}, nil)
			tool.Register(server, a.handlers())
			a.logger.Info("serving MCP tools on stdio")
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
