package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"coderbridge/internal/bridge"
	"coderbridge/internal/problem"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send <problem.toml>",
		Short: "Send a problem to the bridge server to create its workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := problem.LoadFile(args[0])
			if err != nil {
				return err
			}
			callCtx, cancel := withOptionalTimeout(cmd.Context(), timeout)
			defer cancel()

			return ctx.withBridge(func(b *bridge.Bridge) error {
				if err := b.CreateProblemWorkspace(callCtx, p); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine(p.ClassName, statusOK, "workspace created", shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits indefinitely)")
	return cmd
}

func newSourceCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "source <ClassName>",
		Short: "Print the solution source for a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callCtx, cancel := withOptionalTimeout(cmd.Context(), timeout)
			defer cancel()

			return ctx.withBridge(func(b *bridge.Bridge) error {
				source, err := b.GetSolutionSource(callCtx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), source)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits indefinitely)")
	return cmd
}

func withOptionalTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
