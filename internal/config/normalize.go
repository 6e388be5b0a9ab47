package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizeWorkspace(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeServer() error {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	c.Server.PortProperty = strings.TrimSpace(c.Server.PortProperty)
	if c.Server.PortProperty == "" {
		c.Server.PortProperty = defaultPortProperty
	}
	c.Server.PortFile = strings.TrimSpace(c.Server.PortFile)
	if c.Server.PortFile != "" {
		var err error
		if c.Server.PortFile, err = expandPath(c.Server.PortFile); err != nil {
			return fmt.Errorf("server.port_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeWorkspace() error {
	c.Workspace.Root = strings.TrimSpace(c.Workspace.Root)
	if value, ok := os.LookupEnv(WorkspaceEnv); ok && strings.TrimSpace(value) != "" {
		if c.Workspace.Root == "" || c.Workspace.Root == defaultWorkspaceRoot {
			c.Workspace.Root = strings.TrimSpace(value)
		}
	}
	if c.Workspace.Root == "" {
		c.Workspace.Root = defaultWorkspaceRoot
	}
	var err error
	if c.Workspace.Root, err = expandPath(c.Workspace.Root); err != nil {
		return fmt.Errorf("workspace.root: %w", err)
	}

	ext := strings.TrimSpace(c.Workspace.SolutionExtension)
	if ext == "" {
		ext = defaultSolutionExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Workspace.SolutionExtension = strings.ToLower(ext)

	c.Workspace.LockFile = strings.TrimSpace(c.Workspace.LockFile)
	if c.Workspace.LockFile == "" {
		c.Workspace.LockFile = defaultLockFile
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Dir != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
