package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"coderbridge/internal/bridge"
	"coderbridge/internal/config"
	"coderbridge/internal/fileutil"
	"coderbridge/internal/ipc"
	"coderbridge/internal/logging"
	"coderbridge/internal/transport"
	"coderbridge/internal/workspace"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [-- command [args...]]",
		Short: "Start the bridge server in front of the workspace directory",
		Long: "Start the bridge server on an ephemeral loopback port and print the port.\n" +
			"When a command follows --, it is launched with the port published in its\n" +
			"environment and the server stops when that command exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, child []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logging.NewComponentLogger(logger, "serve")

	manager := workspace.NewDirectory(cfg.Workspace.Root, cfg.Workspace.SolutionExtension, logger)
	if err := manager.Check(); err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another coderbridge server is using %s", cfg.Workspace.Root)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	server, err := ipc.NewServer(manager, transport.NewTCP(cfg.Server.Host), logger)
	if err != nil {
		return err
	}
	port, err := server.Start()
	if err != nil {
		return err
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logging.WarnWithContext(logger, "bridge server stop reported errors", "serve_stop_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "sockets may linger until the process exits"))
		}
	}()

	fmt.Fprintln(stdout, port)
	if path := cfg.Server.PortFile; path != "" {
		if err := fileutil.WriteFileAtomic(path, []byte(strconv.Itoa(port)+"\n"), 0o644); err != nil {
			return fmt.Errorf("write port file: %w", err)
		}
		defer os.Remove(path)
	}
	logger.Info("bridge ready",
		logging.Int(logging.FieldPort, port),
		logging.String("workspace_root", cfg.Workspace.Root),
		logging.String("port_property", cfg.Server.PortProperty))

	if len(child) == 0 {
		select {
		case <-ctx.Done():
			logger.Info("shutdown requested")
		case <-server.Done():
			logger.Info("bridge client disconnected; exiting")
		}
		return nil
	}
	return runChild(ctx, cfg, port, child, stdout, stderr, logger)
}

func runChild(ctx context.Context, cfg *config.Config, port int, args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	child := exec.CommandContext(ctx, args[0], args[1:]...)
	child.Env = bridge.PublishPort(os.Environ(), cfg.Server.PortProperty, port)
	child.Stdin = os.Stdin
	child.Stdout = stdout
	child.Stderr = stderr

	logger.Info("launching plugin host", logging.String("command", args[0]))
	if err := child.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with status %d", args[0], exitErr.ExitCode())
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	logger.Info("plugin host exited")
	return nil
}
