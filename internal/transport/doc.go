// Package transport opens loopback sockets for the bridge protocol.
//
// It hides OS socket APIs behind the Network interface so the server and the
// client only see a Listener that reports its ephemeral port and duplex
// connections. Framing is not a transport concern: connections are plain byte
// streams.
package transport
