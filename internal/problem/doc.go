// Package problem holds the contest problem value objects exchanged between
// the arena plugin and the editor process.
//
// Values are plain data: a Problem describes the solution signature, optional
// contest metadata, resource limits, and the ordered test cases. Identity is
// structural, so receivers compare with Equal rather than pointer identity.
// The package also reads TOML problem descriptions used by the CLI.
package problem
