package main

import (
	"calendarbot/cmd/internal/integration/telegram"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the assistant as a Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, appOptions{needModel: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required but not set")
			}

			b, err := telegram.New(a.cfg.TelegramToken, telegram.NewController(a.chatService(), a.log))
			if err != nil {
				return err
			}

			a.log.Info("starting telegram bot")
			b.Start(ctx)
			return nil
		},
	}
}
