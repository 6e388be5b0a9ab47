package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"coderbridge/internal/bridge"
	"coderbridge/internal/config"
	"coderbridge/internal/ipc"
	"coderbridge/internal/logging"
)

type commandContext struct {
	configFlag *string
	portFlag   *int

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, portFlag *int) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		portFlag:   portFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// newBridge builds a bridge that reads the port from --port when given and
// from the configured port property otherwise.
func (c *commandContext) newBridge() (*bridge.Bridge, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts := bridge.Options{
		PortProperty: cfg.Server.PortProperty,
		Logger:       logger,
	}
	if c.portFlag != nil && *c.portFlag != 0 {
		port := strconv.Itoa(*c.portFlag)
		opts.Lookup = func(string) (string, bool) { return port, true }
	}
	return bridge.New(opts), nil
}

func (c *commandContext) withBridge(fn func(*bridge.Bridge) error) error {
	b, err := c.newBridge()
	if err != nil {
		return err
	}
	defer b.Close()
	return wrapBridgeError(fn(b))
}

func wrapBridgeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bridge.ErrPortProperty):
		return fmt.Errorf("%w; pass --port or run under `coderbridge serve -- <command>`", err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to bridge: connection refused; verify `coderbridge serve` is running on that port")
	case ipc.IsConnectivity(err):
		return fmt.Errorf("connect to bridge: %w", err)
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
