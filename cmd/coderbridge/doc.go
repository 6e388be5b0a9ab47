// Package main hosts the coderbridge CLI entrypoint and command graph.
//
// The Cobra-based command tree starts the bridge server in front of a
// directory workspace manager, drives the bridge client from the shell, and
// scaffolds configuration. It centralizes configuration resolution, port
// discovery, and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
