// Package workspace defines the WorkspaceManager capability the bridge server
// delegates to, the domain error it reports, and a directory-backed
// implementation used by the serve command.
//
// The bridge treats Manager as opaque: it forwards problems and class names
// and relays either the result or the Error message back to the caller.
package workspace
