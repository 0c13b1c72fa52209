package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/soyeahso/prelims-tutor/internal/app"
	"github.com/soyeahso/prelims-tutor/internal/chat"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		sessionID string
		server    string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the tutor a question and print the reply",
		Long: "Sends one message. With --server the message goes to a running tutor; " +
			"otherwise the chat service runs in-process against the configured session store.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chat.Request{Message: strings.Join(args, " "), SessionID: sessionID}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var (
				resp *chat.Response
				err  error
			)
			if server != "" {
				resp, err = remoteChat(ctx, server, req)
			} else {
				resp, err = localChat(ctx, req)
			}
			if err != nil {
				return err
			}

			printReply(cmd.OutOrStdout(), cmd.ErrOrStderr(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default \"default\")")
	cmd.Flags().StringVar(&server, "server", "", "base URL of a running tutor, e.g. http://localhost:3456")

	return cmd
}

func remoteChat(ctx context.Context, server string, req chat.Request) (*chat.Response, error) {
	var resp chat.Response
	if err := newRemote(server, 3*time.Minute).do(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func localChat(ctx context.Context, req chat.Request) (*chat.Response, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.Service.Chat(ctx, req)
}

func printReply(out, meta io.Writer, resp *chat.Response) {
	fmt.Fprintln(out, resp.Response)
	fmt.Fprintf(meta, "\n[model=%s tokens=%d+%d]\n",
		resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
}

func newClearCmd() *cobra.Command {
	var (
		sessionID string
		server    string
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear a session's conversation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if server != "" {
				if err := newRemote(server, 30*time.Second).do(ctx, http.MethodPost, clearPath(sessionID), nil, nil); err != nil {
					return err
				}
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				a, err := app.Build(ctx, cfg, log)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Service.Clear(ctx, sessionID); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default \"default\")")
	cmd.Flags().StringVar(&server, "server", "", "base URL of a running tutor")

	return cmd
}
