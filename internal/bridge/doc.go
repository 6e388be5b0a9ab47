// Package bridge is the narrow adapter between the arena plugin process and
// the ipc client. It reads the server port from a named process property
// and builds one client for the lifetime of the process.
package bridge
