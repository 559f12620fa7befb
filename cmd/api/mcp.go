package main

import (
	"calendarbot/cmd/internal/integration/mcp"
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the calendar tools as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runMCP(ctx, os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runMCP serves JSON-RPC on stdin/stdout until stdin closes. stdout carries
// nothing but protocol messages, every log line goes to diag.
func runMCP(ctx context.Context, stdin io.Reader, stdout, diag io.Writer) error {
	log.SetOutput(diag)

	a, err := newApp(ctx, appOptions{logOutput: "stderr"})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewStdioServer(mcp.NewServer(version, a.toolbox, a.validate))
	srv.SetErrorLogger(stdlog.New(diag, "mcp: ", stdlog.LstdFlags))

	if err := srv.Listen(ctx, stdin, stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server stopped with error: %w", err)
	}
	return nil
}
