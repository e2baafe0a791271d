package main

import (
	"fmt"

	"github.com/dewakar-s/procflow/internal/validator"
	"github.com/dewakar-s/procflow/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [procedure]",
	Short: "Check a procedure against the action set",
	Long: `Reports malformed steps, actions missing from the configured set, parameters
that are not bound, and tokens that refer to answers or outputs not available
at that step.`,
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

		report := validator.ValidateProcedure(proc, app.Registry)
		for _, issue := range report.Issues {
			fmt.Fprintln(cmd.OutOrStdout(), issue)
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Procedure is valid (%d steps).\n", len(proc.Steps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
