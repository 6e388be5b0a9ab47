package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable marks failures to reach or bind a peer socket.
var ErrUnavailable = errors.New("peer unavailable")

// DefaultHost is the loopback interface the bridge binds to.
const DefaultHost = "127.0.0.1"

// Conn is a duplex byte stream owned by whichever side opened it.
type Conn interface {
	io.ReadWriteCloser
	SetDeadline(t time.Time) error
}

// Listener accepts inbound connections on an OS assigned port.
type Listener interface {
	Port() int
	Accept() (Conn, error)
	Close() error
}

// Network creates listeners and outbound connections.
type Network interface {
	Listen() (Listener, error)
	Connect(ctx context.Context, port int) (Conn, error)
}

// TCP is the loopback TCP Network.
type TCP struct {
	Host string
}

// NewTCP returns a Network bound to host, defaulting to the loopback address.
func NewTCP(host string) *TCP {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	return &TCP{Host: host}
}

func (n *TCP) host() string {
	if n == nil || strings.TrimSpace(n.Host) == "" {
		return DefaultHost
	}
	return n.Host
}

// Listen binds port 0 so the OS assigns a free ephemeral port.
func (n *TCP) Listen() (Listener, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(n.host(), "0"))
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %w", ErrUnavailable, n.host(), err)
	}
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		_ = ln.Close()
		return nil, fmt.Errorf("%w: unexpected listener address %s", ErrUnavailable, ln.Addr())
	}
	return &tcpListener{ln: ln, port: addr.Port}, nil
}

// Connect dials the given port on the configured host.
func (n *TCP) Connect(ctx context.Context, port int) (Conn, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: invalid port %d", ErrUnavailable, port)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var dialer net.Dialer
	address := net.JoinHostPort(n.host(), strconv.Itoa(port))
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %w", ErrUnavailable, address, err)
	}
	return conn, nil
}

type tcpListener struct {
	ln   net.Listener
	port int
}

func (l *tcpListener) Port() int { return l.port }

func (l *tcpListener) Accept() (Conn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (l *tcpListener) Close() error {
	return l.ln.Close()
}

// IsClosed reports whether err stems from using a closed socket or a peer
// hanging up, which callers treat as an orderly shutdown.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF)
}
