// Package execshell provides structured helpers for invoking the GitHub CLI.
//
// It wraps os/exec with logging, an optional admission gate, and an optional
// timeout via ShellExecutor, exposes OSCommandRunner for default process
// execution, and defines the abstractions the dispatcher uses to run gh in a
// testable manner.
package execshell
