package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	ip := net.ParseIP(c.Server.Host)
	if ip == nil && c.Server.Host != "localhost" {
		return fmt.Errorf("server.host %q must be an IP address or localhost", c.Server.Host)
	}
	if ip != nil && !ip.IsLoopback() {
		return fmt.Errorf("server.host %q must be a loopback address", c.Server.Host)
	}
	if strings.ContainsAny(c.Server.PortProperty, "= \t") {
		return fmt.Errorf("server.port_property %q must not contain whitespace or '='", c.Server.PortProperty)
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	if c.Workspace.Root == "" {
		return errors.New("workspace.root must be set")
	}
	ext := strings.TrimPrefix(c.Workspace.SolutionExtension, ".")
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		return fmt.Errorf("workspace.solution_extension %q must be a single extension", c.Workspace.SolutionExtension)
	}
	if filepath.Base(c.Workspace.LockFile) == "." || filepath.Base(c.Workspace.LockFile) == string(filepath.Separator) {
		return fmt.Errorf("workspace.lock_file %q must name a file", c.Workspace.LockFile)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
