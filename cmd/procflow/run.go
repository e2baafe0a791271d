package main

import (
	"os"

	"github.com/dewakar-s/procflow/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [procedure]",
	Short: "Run a procedure in the console",
	Long: `Runs a procedure interactively, asking questions on stdout and reading answers
from stdin. With --session the snapshot is stored and an interrupted run can be
continued later with the same session ID.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{ProcedurePath: app.Config.Procedure.Path}
		if len(args) > 0 {
			opts.ProcedurePath = args[0]
		}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		return cli.RunSession(cmd.Context(), app, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to create or resume")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (JSON Lines input/output)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner and status lines")
	runCmd.Flags().Bool("fresh", false, "Delete the session before running")
}
