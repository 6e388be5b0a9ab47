// Package textutil provides filename sanitization helpers.
//
// Workspace directories are derived from arena supplied names (contest and
// class names) which may contain spaces, punctuation, or non-ASCII letters.
// These helpers turn such names into path segments that are safe on every
// filesystem the editor runs on.
package textutil
