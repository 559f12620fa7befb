package main

import (
	"bufio"
	"calendarbot/cmd/internal/service"
	"calendarbot/cmd/internal/utils/apierror"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const frontendCLI = "cli"

func newChatCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), appOptions{needModel: true})
			if err != nil {
				return err
			}
			defer a.Close()
			return runChat(cmd.Context(), a.chatService(), session, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&session, "session", "cli", "session id the conversation is stored under")
	return cmd
}

type chatter interface {
	Chat(ctx context.Context, frontend string, req *service.ChatRequest, sessionID string) (*service.ChatResponse, apierror.ErrorResponse)
}

// runChat reads one message per line until EOF or "exit".
func runChat(ctx context.Context, chat chatter, session string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "exit", "quit":
			return nil
		}

		resp, apierr := chat.Chat(ctx, frontendCLI, &service.ChatRequest{Input: line}, session)
		if apierr != nil {
			fmt.Fprintf(out, "error: %s\n> ", apierr.Error())
			continue
		}
		fmt.Fprintf(out, "%s\n> ", resp.Output)
	}
	return scanner.Err()
}
