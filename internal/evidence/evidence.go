// Package evidence turns command outcomes into audit records.
//
// Every fact the agent reports — an OS version, a detected binary — carries
// an Evidence entry naming the exact command that produced it and the raw
// output it returned. Recording is total: runner failures become Evidence
// with a diagnostic string, never an error, so one dead probe cannot stop
// the scan.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

// Evidence pairs an executed command with its captured output.
// Immutable once created; attached to exactly one derived fact.
type Evidence struct {
	CommandRun string `json:"command_run"`
	RawOutput  string `json:"raw_output"`
	Succeeded  bool   `json:"succeeded"`
}

// Record converts a runner outcome into Evidence. On success the raw output
// is trimmed stdout, with stderr standing in when stdout is empty (version
// banners often land on stderr). On a runner error the output is a short
// diagnostic and Succeeded is false.
func Record(command string, res runner.Result, err error) Evidence {
	if err != nil {
		return Evidence{
			CommandRun: command,
			RawOutput:  diagnostic(err),
			Succeeded:  false,
		}
	}

	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		out = strings.TrimSpace(res.Stderr)
	}
	return Evidence{
		CommandRun: command,
		RawOutput:  out,
		Succeeded:  res.ExitCode == 0,
	}
}

// Native builds Evidence for a fact obtained by in-process introspection
// rather than a shell command, e.g. a gopsutil call on a local scan.
func Native(call, value string) Evidence {
	return Evidence{
		CommandRun: call,
		RawOutput:  value,
		Succeeded:  value != "",
	}
}

// Aborted marks a probe that never ran because the scan deadline passed.
func Aborted(command string) Evidence {
	return Evidence{
		CommandRun: command,
		RawOutput:  "scan aborted",
		Succeeded:  false,
	}
}

// Capture runs command through r and records the outcome in one step.
func Capture(ctx context.Context, r runner.Runner, command string, timeout time.Duration) (runner.Result, Evidence) {
	res, err := r.Run(ctx, command, timeout)
	return res, Record(command, res, err)
}

func diagnostic(err error) string {
	switch {
	case errors.Is(err, runner.ErrTimeout):
		return err.Error()
	case errors.Is(err, runner.ErrConnectionLost):
		return fmt.Sprintf("connection lost: %v", err)
	default:
		return fmt.Sprintf("execution failed: %v", err)
	}
}
