// Package ipc implements the two halves of the bridge protocol: a Server that
// binds an ephemeral loopback port and dispatches requests from its single
// client to a workspace.Manager, and a Client that proxies the same Manager
// contract across the process boundary.
//
// Requests are strictly half-duplex. The client sends one framed request and
// blocks for its response before sending another, so the server handles
// requests sequentially without locking around the manager. Failures raised by
// the manager travel back as failure responses and surface on the client as
// *workspace.Error, while socket level problems surface as ErrConnectivity.
package ipc
