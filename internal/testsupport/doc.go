// Package testsupport holds fixtures shared by package tests: a temp-dir
// backed config builder, sample problems, and an in-memory workspace manager.
package testsupport
