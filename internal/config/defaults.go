package config

const (
	defaultConfigPath        = "~/.config/coderbridge/config.toml"
	defaultHost              = "127.0.0.1"
	defaultPortProperty      = "CODERBRIDGE_PORT"
	defaultWorkspaceRoot     = "~/coderbridge/workspace"
	defaultSolutionExtension = ".java"
	defaultLockFile          = ".coderbridge.lock"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	// WorkspaceEnv overrides the workspace root when the config leaves it blank.
	WorkspaceEnv = "CODERBRIDGE_WORKSPACE"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Host:         defaultHost,
			PortProperty: defaultPortProperty,
		},
		Workspace: Workspace{
			Root:              defaultWorkspaceRoot,
			SolutionExtension: defaultSolutionExtension,
			LockFile:          defaultLockFile,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
