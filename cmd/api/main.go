package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "calendarbot",
		Short: "Conversational calendar assistant",
		Long: `calendarbot books, moves and lists appointments from plain language.

It can run as:
  - an HTTP chat API (serve, default)
  - a terminal chat (chat)
  - an MCP server exposing the calendar tools over stdio (mcp)
  - a Telegram bot (telegram)`,
		SilenceUsage: true,
		Version:      version,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newTelegramCmd())
	root.AddCommand(newMigrateCmd())

	// Without a subcommand, serve
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
