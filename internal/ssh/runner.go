// Package ssh provides the remote command runner. It owns one SSH
// connection per scan and serializes command sessions over it.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

// Runner implements runner.Runner over an established SSH connection.
// One session is opened per command; the mutex keeps concurrent probe
// workers from interleaving session setup on the shared connection.
type Runner struct {
	client *ssh.Client
	target Target
	mu     sync.Mutex
}

// Dial establishes an SSH connection to target and returns a Runner bound
// to it. keyFile, when non-empty, names an explicit private key to try
// before the agent and default key locations.
func Dial(target Target, keyFile string) (*Runner, error) {
	config, err := buildClientConfig(target.User, keyFile)
	if err != nil {
		return nil, fmt.Errorf("ssh config: %w", err)
	}

	client, err := ssh.Dial("tcp", target.Addr(), config)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", target.Addr(), err)
	}

	return &Runner{client: client, target: target}, nil
}

// Run executes command on the remote host, enforcing timeout by tearing
// down the session. Remote non-zero exits are returned as Result data.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) (runner.Result, error) {
	if timeout <= 0 {
		timeout = runner.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.client.NewSession()
	if err != nil {
		return runner.Result{}, fmt.Errorf("%w: ssh session: %v", runner.ErrConnectionLost, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	err = session.Run(command)
	close(done)

	res := runner.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%w after %s", runner.ErrTimeout, timeout)
	}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
			return res, nil
		}
		return res, fmt.Errorf("%w: %v", runner.ErrConnectionLost, err)
	}
	return res, nil
}

// Verify round-trips a marker string through the remote shell to confirm
// the connection can actually execute commands.
func (r *Runner) Verify(ctx context.Context, timeout time.Duration) error {
	res, err := r.Run(ctx, `echo SSH_TEST_OK`, timeout)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 || !bytes.Contains([]byte(res.Stdout), []byte("SSH_TEST_OK")) {
		return fmt.Errorf("%w: connection check failed: %s", runner.ErrConnectionLost, res.Stderr)
	}
	return nil
}

// Target returns the target this runner is connected to.
func (r *Runner) Target() Target {
	return r.target
}

// Close closes the SSH connection.
func (r *Runner) Close() error {
	return r.client.Close()
}

// buildClientConfig assembles auth methods: explicit key file first, then
// SSH agent, then the conventional key files under ~/.ssh.
func buildClientConfig(user, keyFile string) (*ssh.ClientConfig, error) {
	var signers []ssh.Signer

	if keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("parse key file %s: %w", keyFile, err)
		}
		signers = append(signers, signer)
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			if agentSigners, err := agent.NewClient(conn).Signers(); err == nil {
				signers = append(signers, agentSigners...)
			}
		}
	}

	home, _ := os.UserHomeDir()
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		data, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}

	if len(signers) == 0 {
		return nil, fmt.Errorf("no SSH keys available (no agent and no key files found)")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cb, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts")); err == nil {
		hostKeyCallback = cb
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signers...)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         15 * time.Second,
	}, nil
}
