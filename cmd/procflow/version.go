package main

import (
	"fmt"

	"github.com/dewakar-s/procflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of procflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "procflow version %s\n", procflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
