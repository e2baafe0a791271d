package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dewakar-s/procflow/internal/validator"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Inspect the configured action set",
}

var actionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the compiled actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		invokers := app.Registry.List()
		if len(invokers) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No actions available in set %q.\n", app.Config.Actions.Set)
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMETHOD\tURL\tPARAMETERS")
		for _, inv := range invokers {
			params := ""
			for i, f := range inv.Schema() {
				if i > 0 {
					params += ", "
				}
				params += f.Name + ":" + f.Kind.Name()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inv.Name(), inv.Method(), inv.Descriptor().URL, params)
		}
		return tw.Flush()
	},
}

var actionsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the descriptors of the action set",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		descs, err := app.Source.ListActions(cmd.Context(), app.Config.Actions.Set)
		if err != nil {
			return err
		}
		report := validator.ValidateActions(descs)
		for _, issue := range report.Issues {
			fmt.Fprintln(cmd.OutOrStdout(), issue)
		}
		if err := report.Err(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d actions are valid.\n", len(descs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.AddCommand(actionsLsCmd, actionsCheckCmd)
}
