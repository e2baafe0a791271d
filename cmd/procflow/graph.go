package main

import (
	"fmt"

	"github.com/dewakar-s/procflow/internal/presentation/graph"
	"github.com/dewakar-s/procflow/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [procedure]",
	Short: "Export the procedure as a Mermaid diagram",
	Long: `Prints a Mermaid flowchart of the procedure. With --session the steps the
session already went through and its current step are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		path := app.Config.Procedure.Path
		if len(args) > 0 {
			path = args[0]
		}
		proc, err := file.LoadProcedure(path)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			state, err := app.Controller.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", id, err)
			}
			overlay = graph.OverlayOf(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(proc, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the progress of this session")
}
