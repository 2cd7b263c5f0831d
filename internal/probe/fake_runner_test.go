package probe

import (
	"context"
	"sync"
	"time"

	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

// fakeRunner serves canned responses keyed by command string. Commands with
// no scripted response exit 127, like a shell that cannot find the program.
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
}

type fakeResponse struct {
	result runner.Result
	err    error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string]fakeResponse{}}
}

func (f *fakeRunner) stub(command, stdout string) {
	f.responses[command] = fakeResponse{result: runner.Result{Stdout: stdout}}
}

func (f *fakeRunner) stubExit(command string, code int, stderr string) {
	f.responses[command] = fakeResponse{result: runner.Result{ExitCode: code, Stderr: stderr}}
}

func (f *fakeRunner) stubErr(command string, err error) {
	f.responses[command] = fakeResponse{err: err}
}

func (f *fakeRunner) Run(_ context.Context, command string, _ time.Duration) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, command)
	resp, ok := f.responses[command]
	f.mu.Unlock()

	if !ok {
		return runner.Result{ExitCode: 127, Stderr: "command not found"}, nil
	}
	return resp.result, resp.err
}
