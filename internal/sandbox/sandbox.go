// Package sandbox runs short-lived commands with a hard timeout and
// capped output. The pipeline uses it for the isolated syntax check; no
// command it runs may leave persistent state behind.
package sandbox

import (
	"context"
	"time"
)

// Command describes one process invocation.
type Command struct {
	Name      string
	Args      []string
	Dir       string // empty means a fresh temp dir, removed afterwards
	Timeout   time.Duration
	MaxOutput int64
}

// ExecutionResult is what happened to the process.
type ExecutionResult struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	Duration   time.Duration
	Killed     bool
	KillReason string
}

// Runner executes commands. An error return means the command could not
// be started; a command that started and failed reports through the
// result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*ExecutionResult, error)
}
