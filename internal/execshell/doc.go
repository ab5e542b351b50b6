// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and a fixed per-invocation timeout via
// ShellExecutor, exposes OSCommandRunner for default process execution, and
// defines the abstractions gitfleet uses to run git in a testable manner.
package execshell
