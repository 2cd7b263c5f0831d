package evidence

import (
	"fmt"
	"testing"

	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

func TestRecord_SuccessRoundTripsOutput(t *testing.T) {
	res := runner.Result{ExitCode: 0, Stdout: "git version 2.50.1"}

	ev := Record("git --version", res, nil)

	if ev.CommandRun != "git --version" {
		t.Errorf("command = %q", ev.CommandRun)
	}
	if ev.RawOutput != "git version 2.50.1" {
		t.Errorf("raw output = %q, want untouched runner output", ev.RawOutput)
	}
	if !ev.Succeeded {
		t.Error("succeeded = false, want true for exit 0")
	}
}

func TestRecord_StderrFallback(t *testing.T) {
	res := runner.Result{ExitCode: 0, Stdout: "", Stderr: "openjdk 21.0.2"}

	ev := Record("java -version", res, nil)

	if ev.RawOutput != "openjdk 21.0.2" {
		t.Errorf("raw output = %q, want stderr when stdout empty", ev.RawOutput)
	}
}

func TestRecord_NonZeroExit(t *testing.T) {
	res := runner.Result{ExitCode: 127, Stderr: "sh: doesnotexist123: command not found"}

	ev := Record("command -v doesnotexist123", res, nil)

	if ev.Succeeded {
		t.Error("succeeded = true for exit 127")
	}
	if ev.RawOutput == "" {
		t.Error("raw output should carry stderr for failed commands")
	}
}

func TestRecord_RunnerErrorNeverPanics(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"timeout", fmt.Errorf("%w after 5s", runner.ErrTimeout)},
		{"connection lost", runner.ErrConnectionLost},
		{"unavailable", runner.ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := Record("uname -s", runner.Result{}, tc.err)
			if ev.Succeeded {
				t.Error("succeeded = true for runner error")
			}
			if ev.RawOutput == "" {
				t.Error("raw output should hold a diagnostic")
			}
			if ev.CommandRun != "uname -s" {
				t.Errorf("command = %q", ev.CommandRun)
			}
		})
	}
}

func TestAborted(t *testing.T) {
	ev := Aborted("git --version")
	if ev.Succeeded || ev.RawOutput != "scan aborted" {
		t.Errorf("aborted evidence = %+v", ev)
	}
}
