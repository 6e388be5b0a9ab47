package testsupport

import (
	"path/filepath"
	"testing"

	"coderbridge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Workspace.Root = filepath.Join(base, "workspace")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithPortFile sets server.port_file to a file inside the test directory.
func WithPortFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.PortFile = filepath.Join(b.baseDir, name)
	}
}

// WithPortProperty overrides the environment property carrying the port.
func WithPortProperty(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.PortProperty = key
	}
}

// WithSolutionExtension overrides the default solution extension.
func WithSolutionExtension(ext string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workspace.SolutionExtension = ext
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Workspace.Root)
}
