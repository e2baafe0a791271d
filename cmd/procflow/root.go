package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dewakar-s/procflow"
	"github.com/dewakar-s/procflow/internal/cli"
	"github.com/dewakar-s/procflow/internal/config"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "procflow",
	Short: "procflow runs interruptible multi-turn procedures",
	Long: `procflow drives step-by-step procedures that ask the user questions, call
HTTP actions and compose a final answer. Sessions pause while waiting for input
and resume from their stored snapshot, from a console, HTTP, MCP or Telegram.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input (2) from runtime failures (1).
func exitCode(err error) int {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./procflow.yaml when present)")
	pf.Bool("debug", false, "Enable debug logging and lifecycle tracing")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("store", config.BackendFile, "Session store: memory, file, redis or sqlite")
	pf.String("store-path", ".procflow/sessions", "Session directory (file) or database file (sqlite)")
	pf.String("actions", "actions.yaml", "Actions document (file) or database file (sqlite)")
	pf.String("action-set", "", "Action set to load")

	bind := map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"store.backend": "store",
		"store.path":    "store-path",
		"actions.path":  "actions",
		"actions.set":   "action-set",
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}
}

// newApp loads the configuration and wires the application for one command.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger := cli.CreateLogger(os.Stderr, cfg.Log, debug)
	return cli.Build(cmd.Context(), cfg, logger, cli.WithDebug(debug), cli.WithVersion(procflow.Version))
}
