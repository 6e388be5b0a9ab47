// Package logging assembles structured slog loggers and formatting helpers used
// by the bridge server, client, and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so protocol code can tag log
// lines with request ids and request types. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
