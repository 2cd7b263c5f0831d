// Package runner abstracts shell command execution against a scan target,
// local or remote. System and software probes are written once against the
// Runner interface and never care which side of an SSH connection they run on.
package runner

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single command when the caller does not set one.
const DefaultTimeout = 30 * time.Second

// Result holds the captured output of one command invocation.
// A non-zero ExitCode is normal data, not an error — callers interpret it.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

var (
	// ErrTimeout reports that a command exceeded its timeout and was killed.
	ErrTimeout = errors.New("command timed out")

	// ErrConnectionLost reports that the remote channel died mid-command.
	ErrConnectionLost = errors.New("connection lost")

	// ErrUnavailable reports that the command could not be invoked at all,
	// e.g. no shell on the local host.
	ErrUnavailable = errors.New("command execution unavailable")
)

// Runner executes a shell command string against a scan target.
//
// Implementations must treat a command that runs and exits non-zero as a
// successful Run: the exit status lands in Result.ExitCode, the error return
// is reserved for the command not completing (timeout, dead connection,
// unusable executor).
type Runner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (Result, error)
}
