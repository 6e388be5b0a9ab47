package ipc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"coderbridge/internal/logging"
	"coderbridge/internal/problem"
	"coderbridge/internal/transport"
	"coderbridge/internal/wire"
	"coderbridge/internal/workspace"
)

var _ workspace.Manager = (*Client)(nil)

// Client proxies workspace.Manager calls to a bridge server. It connects
// lazily on the first call and reuses the connection for later calls.
// Calls are serialised so only one request is ever in flight.
type Client struct {
	network transport.Network
	port    int
	logger  *slog.Logger

	// call serialises round trips.
	call sync.Mutex

	mu     sync.Mutex // guards conn, stream and closed
	conn   transport.Conn
	stream *wire.Stream
	closed bool
}

// NewClient returns a client for the server listening on port. A nil network
// selects loopback TCP.
func NewClient(network transport.Network, port int, logger *slog.Logger) *Client {
	if network == nil {
		network = transport.NewTCP("")
	}
	return &Client{
		network: network,
		port:    port,
		logger:  logging.NewComponentLogger(logger, "ipc-client"),
	}
}

// Dial returns a client that is already connected, so a missing server is
// reported immediately.
func Dial(ctx context.Context, network transport.Network, port int, logger *slog.Logger) (*Client, error) {
	c := NewClient(network, port, logger)
	if _, _, err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Port returns the server port this client targets.
func (c *Client) Port() int {
	return c.port
}

// CreateProblemWorkspace asks the server to materialise p.
func (c *Client) CreateProblemWorkspace(ctx context.Context, p problem.Problem) error {
	resp, err := c.roundTrip(ctx, wire.CreateWorkspace{Problem: p})
	if err != nil {
		return err
	}
	switch r := resp.(type) {
	case wire.Ack:
		return nil
	case wire.Failure:
		return workspace.NewError(r.Message, nil)
	default:
		return fmt.Errorf("%w: unexpected %s response to %s", wire.ErrProtocol, resp.Kind(), wire.KindCreateWorkspace)
	}
}

// GetSolutionSource fetches the current solution source for className.
func (c *Client) GetSolutionSource(ctx context.Context, className string) (string, error) {
	resp, err := c.roundTrip(ctx, wire.GetSolutionSource{ClassName: className})
	if err != nil {
		return "", err
	}
	switch r := resp.(type) {
	case wire.StringResult:
		return r.Value, nil
	case wire.Failure:
		return "", workspace.NewError(r.Message, nil)
	default:
		return "", fmt.Errorf("%w: unexpected %s response to %s", wire.ErrProtocol, resp.Kind(), wire.KindGetSolutionSource)
	}
}

// Close releases the connection without waiting for an in-flight call; that
// call fails with ErrClientClosed. Later calls fail the same way.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.stream = nil
	c.mu.Unlock()
	return closeConn(conn)
}

func (c *Client) roundTrip(ctx context.Context, req wire.Request) (wire.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.call.Lock()
	defer c.call.Unlock()

	if c.isClosed() {
		return nil, ErrClientClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	payload, err := wire.EncodeRequest(id, req)
	if err != nil {
		return nil, err
	}
	// A request that cannot be framed never reaches the connection.
	if err := wire.CheckFrameSize(len(payload)); err != nil {
		return nil, fmt.Errorf("%s request: %w", req.Kind(), err)
	}

	conn, stream, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(logging.WithRequestID(ctx, id), c.logger).
		With(logging.String(logging.FieldRequestType, string(req.Kind())))

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		c.drop(conn)
		return nil, c.brokenRoundTrip(ctx, "set deadline", err)
	}
	// Cancellation expires the deadline so a blocked read or write returns.
	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(expired)
		_ = conn.SetDeadline(time.Now())
	})
	defer func() {
		if !stop() {
			// The callback may still be running; let it finish before the
			// next call resets the deadline.
			<-expired
		}
	}()

	start := time.Now()
	if err := stream.Send(payload); err != nil {
		c.drop(conn)
		return nil, c.brokenRoundTrip(ctx, "send", err)
	}
	frame, err := stream.Receive()
	if err != nil {
		c.drop(conn)
		return nil, c.brokenRoundTrip(ctx, "receive", err)
	}

	respID, resp, err := wire.DecodeResponse(frame)
	if err != nil {
		return nil, err
	}
	if respID != id {
		c.drop(conn)
		return nil, fmt.Errorf("%w: response id %q does not match request %q", wire.ErrProtocol, respID, id)
	}
	logger.Debug("bridge round trip complete",
		logging.String("response_type", string(resp.Kind())),
		logging.Duration("elapsed", time.Since(start)))
	return resp, nil
}

func (c *Client) brokenRoundTrip(ctx context.Context, op string, err error) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnectivity, op, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", ErrConnectivity, op, err)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// connect returns the open connection, dialling the server if there is none.
// Dialling happens outside mu so Close never waits on it.
func (c *Client) connect(ctx context.Context) (transport.Conn, *wire.Stream, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, ErrClientClosed
	}
	if c.conn != nil {
		conn, stream := c.conn, c.stream
		c.mu.Unlock()
		return conn, stream, nil
	}
	c.mu.Unlock()

	conn, err := c.network.Connect(ctx, c.port)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = conn.Close()
		return nil, nil, ErrClientClosed
	}
	c.conn = conn
	c.stream = wire.NewStream(conn)
	c.logger.Debug("connected to bridge server", logging.Int(logging.FieldPort, c.port))
	return c.conn, c.stream, nil
}

// drop discards conn if it is still the current connection.
func (c *Client) drop(conn transport.Conn) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.stream = nil
	c.mu.Unlock()
	_ = closeConn(conn)
}

func closeConn(conn transport.Conn) error {
	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !transport.IsClosed(err) {
		return err
	}
	return nil
}
