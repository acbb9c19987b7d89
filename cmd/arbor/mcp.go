package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the task tree to AI agents as MCP tools and an arbor://forest resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Stdout carries the protocol on stdio, so logs are dropped unless --debug.
		app, err := openApp(cmd, transport == "stdio")
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Manager)
		switch transport {
		case "stdio":
			return srv.ServeStdio()
		case "sse":
			sc := cli.NewSignalContext(cmd.Context())
			defer sc.Cancel()
			app.Logger.Info("Starting MCP server", "transport", "sse", "port", port)
			return srv.ServeSSE(sc, port)
		default:
			return fmt.Errorf("unknown transport %q (stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "Port for the sse transport")
}
