// Package wire defines the bridge protocol: length-prefixed frames carrying
// JSON envelopes.
//
// Every frame is a 4-byte big-endian payload length followed by the payload.
// Payloads are Message envelopes tagged with a request or response kind and a
// request id. Requests are CreateWorkspace and GetSolutionSource; responses are
// Ack, StringResult, and Failure. Each variant has an explicit encode/decode
// pair so peers reconstruct structurally equal values.
//
// Decoding distinguishes two failure classes. A complete frame whose payload
// cannot be decoded yields ErrProtocol and leaves the stream usable. A
// truncated or oversized frame leaves the stream out of sync and must close
// the connection.
package wire
