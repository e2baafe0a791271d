package main

import (
	"fmt"

	"github.com/dewakar-s/procflow/pkg/adapters/file"
	"github.com/dewakar-s/procflow/pkg/adapters/telegram"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/runner"
	"github.com/spf13/cobra"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram [procedure]",
	Short: "Serve a procedure to Telegram chats",
	Long: `Long-polls the Telegram Bot API and runs the procedure once per chat. Each
chat has its own session; /start begins it again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Config.Telegram.Token == "" {
			return &domain.ConfigurationError{Field: "telegram.token", Reason: "required (set PROCFLOW_TELEGRAM_TOKEN)"}
		}

		path := app.Config.Procedure.Path
		if len(args) > 0 {
			path = args[0]
		}
		proc, err := file.LoadProcedure(path)
		if err != nil {
			return err
		}
		if err := proc.Validate(); err != nil {
			return err
		}

		bot, err := telegram.Connect(app.Config.Telegram.Token)
		if err != nil {
			return fmt.Errorf("failed to connect to telegram: %w", err)
		}
		app.Logger.Info("Telegram bot authorized", "account", bot.Self.UserName)

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()

		gw := telegram.NewGateway(bot, app.Controller, proc, telegram.WithLogger(app.Logger))
		return gw.Run(sm.Context())
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().String("token", "", "Bot token (overrides telegram.token)")
	_ = v.BindPFlag("telegram.token", telegramCmd.Flags().Lookup("token"))
}
