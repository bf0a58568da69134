// Package execshell provides structured helpers for invoking the git binary.
//
// It wraps os/exec with lifecycle logging via ShellExecutor, exposes
// OSCommandRunner for default process execution, and defines the command and
// result abstractions branch-keeper uses to drive git in a testable manner.
package execshell
