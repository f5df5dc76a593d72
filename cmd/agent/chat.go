package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petasbytes/entropy-agent/internal/history"
	"github.com/petasbytes/entropy-agent/internal/telemetry"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent interactively (in-memory, Ctrl-C to quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.newRunner()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			r.Out = out
			r.System = scenarioSystem
			model := anthropic.Model(a.cfg.Model)

			// stdin reader goroutine -> lines into channel
			scanner := bufio.NewScanner(cmd.InOrStdin())
			inputCh := make(chan string)
			go func() {
				defer close(inputCh)
				for scanner.Scan() {
					select {
					case inputCh <- scanner.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

			fmt.Fprintln(out, "Chat with Claude (Ctrl-C to quit)")
			var conv []anthropic.MessageParam
			for {
				fmt.Fprint(out, "\u001b[94mYou\u001b[0m: ")
				var (
					user string
					ok   bool
				)
				select {
				case <-ctx.Done():
					fmt.Fprintln(out, "\nExiting...")
					return nil
				case user, ok = <-inputCh:
					if !ok {
						return scanner.Err()
					}
				}
				if strings.TrimSpace(user) == "" {
					continue
				}

				window, st := history.Window(append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(user))), a.cfg.HistoryBudget, a.log)
				if st.Oversize {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: message exceeds the history budget of %d\n", st.Budget)
					continue
				}
				turnCtx := telemetry.WithTurnID(ctx, telemetry.NewTurnID())
				next, _, err := r.Run(turnCtx, model, window, a.cfg.MaxSteps)
				if err != nil {
					// Drop the failed turn so the next request starts from a consistent history.
					a.log.Error("turn failed", zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				conv = next
			}
		},
	}
}
