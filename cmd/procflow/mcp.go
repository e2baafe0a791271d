package main

import (
	"github.com/dewakar-s/procflow"
	"github.com/dewakar-s/procflow/pkg/adapters/mcp"
	"github.com/dewakar-s/procflow/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Serves procflow over the Model Context Protocol. Agents get start_procedure,
resume_procedure and get_session tools, plus one tool per registered action.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Controller, procflow.Version,
			mcp.WithLogger(app.Logger),
			mcp.WithCatalog(app.Registry),
		)

		useSSE, _ := cmd.Flags().GetBool("sse")
		if !useSSE {
			// Stdout belongs to the protocol; logs go to stderr.
			return srv.ServeStdio()
		}

		port, _ := cmd.Flags().GetInt("port")
		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()
		return srv.ServeSSE(sm.Context(), port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().Int("port", 8081, "Port for the SSE transport")
}
