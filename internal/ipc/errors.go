package ipc

import "errors"

var (
	// ErrConnectivity marks failures to reach the peer process: bind, accept,
	// dial, or a connection dropped mid round trip. It never wraps a domain
	// failure reported by the workspace manager.
	ErrConnectivity = errors.New("bridge connectivity error")
	// ErrServerStopped is returned by Start once the server has been stopped.
	ErrServerStopped = errors.New("bridge server stopped")
	// ErrServerStarted is returned by a second call to Start.
	ErrServerStarted = errors.New("bridge server already started")
	// ErrClientClosed is returned by calls made after Client.Close.
	ErrClientClosed = errors.New("bridge client closed")
)

// IsConnectivity reports whether err signals an absent or vanished peer.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}
