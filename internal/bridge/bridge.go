package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"coderbridge/internal/ipc"
	"coderbridge/internal/logging"
	"coderbridge/internal/problem"
	"coderbridge/internal/transport"
)

// DefaultPortProperty is the environment property the launcher publishes the
// server port under.
const DefaultPortProperty = "CODERBRIDGE_PORT"

// ErrPortProperty reports a missing or unparsable port property. It is a
// configuration error of the host process, not of the protocol.
var ErrPortProperty = errors.New("bridge port property")

// PortFromEnv reads the port published under key in the process environment.
func PortFromEnv(key string) (int, error) {
	return PortFromLookup(os.LookupEnv, key)
}

// PortFromLookup reads the port published under key using lookup.
func PortFromLookup(lookup func(string) (string, bool), key string) (int, error) {
	if key == "" {
		key = DefaultPortProperty
	}
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: %s is not set", ErrPortProperty, key)
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrPortProperty, key, raw)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: %s=%d is out of range", ErrPortProperty, key, port)
	}
	return port, nil
}

// PublishPort returns a copy of env with key set to port, replacing any
// earlier value.
func PublishPort(env []string, key string, port int) []string {
	if key == "" {
		key = DefaultPortProperty
	}
	prefix := key + "="
	out := slices.DeleteFunc(slices.Clone(env), func(kv string) bool {
		return strings.HasPrefix(kv, prefix)
	})
	return append(out, prefix+strconv.Itoa(port))
}

// Options configures a Bridge.
type Options struct {
	// PortProperty names the property holding the port. Defaults to
	// DefaultPortProperty.
	PortProperty string
	// Lookup resolves properties. Defaults to os.LookupEnv.
	Lookup  func(string) (string, bool)
	Network transport.Network
	Logger  *slog.Logger
}

// Bridge lazily constructs a single ipc client on first use.
type Bridge struct {
	opts   Options
	logger *slog.Logger
	once   sync.Once
	client *ipc.Client
	err    error
}

// New returns a bridge. Nothing is read or dialled until the first call.
func New(opts Options) *Bridge {
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.PortProperty == "" {
		opts.PortProperty = DefaultPortProperty
	}
	return &Bridge{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "bridge")}
}

// Client returns the process-wide client, reading the port on first use.
// A port property error is sticky for the lifetime of the bridge.
func (b *Bridge) Client() (*ipc.Client, error) {
	b.once.Do(func() {
		port, err := PortFromLookup(b.opts.Lookup, b.opts.PortProperty)
		if err != nil {
			logging.ErrorWithContext(b.logger, "bridge port unavailable", "bridge_port_invalid",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "launch the plugin through coderbridge serve --exec"))
			b.err = err
			return
		}
		b.logger.Debug("bridge client configured", logging.Int(logging.FieldPort, port))
		b.client = ipc.NewClient(b.opts.Network, port, b.opts.Logger)
	})
	return b.client, b.err
}

// CreateProblemWorkspace forwards p to the workspace manager.
func (b *Bridge) CreateProblemWorkspace(ctx context.Context, p problem.Problem) error {
	client, err := b.Client()
	if err != nil {
		return err
	}
	return client.CreateProblemWorkspace(ctx, p)
}

// GetSolutionSource fetches the solution source for className.
func (b *Bridge) GetSolutionSource(ctx context.Context, className string) (string, error) {
	client, err := b.Client()
	if err != nil {
		return "", err
	}
	return client.GetSolutionSource(ctx, className)
}

// Close releases the client connection, if one was made. A bridge closed
// before first use fails later calls with ipc.ErrClientClosed.
func (b *Bridge) Close() error {
	b.once.Do(func() { b.err = ipc.ErrClientClosed })
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}
