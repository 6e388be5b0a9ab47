// Package fileutil provides small filesystem helpers shared by the workspace
// manager and the CLI: atomic replacement and create-once writes.
package fileutil
