// Package scan orchestrates one fingerprinting run: pick a runner, probe
// the system, probe the software catalog, assemble the report.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/apatole-r7/fingerprint-agent/internal/config"
	"github.com/apatole-r7/fingerprint-agent/internal/probe"
	"github.com/apatole-r7/fingerprint-agent/internal/report"
	"github.com/apatole-r7/fingerprint-agent/internal/runner"
	"github.com/apatole-r7/fingerprint-agent/internal/ssh"
)

// Mode selects where commands execute.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// ErrTargetUnreachable reports that a remote scan could not establish its
// execution context at all. This is the only fatal probe-path error; once
// a runner exists, individual probe failures become Evidence instead.
var ErrTargetUnreachable = errors.New("target unreachable")

// Options configures one scan invocation. Scans share no state; build a
// fresh Options per run.
type Options struct {
	Mode           Mode
	Target         ssh.Target // remote mode only
	KeyFile        string     // remote mode only
	Targets        []config.SoftwareTarget
	CommandTimeout time.Duration
	ScanTimeout    time.Duration // 0 means no whole-scan deadline
	Concurrency    int
	AgentVersion   string
	Logger         *zap.Logger
}

// Run executes a complete scan and returns the assembled report. Remote
// connections are released on every path out of the function. A report is
// produced unless the scan cannot start at all.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	if opts.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ScanTimeout)
		defer cancel()
	}

	var (
		r      runner.Runner
		native bool
	)
	switch opts.Mode {
	case ModeRemote:
		log.Info("connecting to remote target", zap.String("target", opts.Target.String()))
		remote, err := ssh.Dial(opts.Target, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTargetUnreachable, err)
		}
		defer remote.Close()

		if err := remote.Verify(ctx, opts.CommandTimeout); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTargetUnreachable, err)
		}
		r = remote
	default:
		r = runner.NewLocal()
		native = true
	}

	return execute(ctx, r, native, opts, log, start), nil
}

// execute drives the probes against an established runner. It always
// returns a report: by this point every failure is data.
func execute(ctx context.Context, r runner.Runner, native bool, opts Options, log *zap.Logger, start time.Time) *report.Report {
	platform, platformEv := probe.DetectPlatform(ctx, r, opts.CommandTimeout, native)
	log.Info("platform resolved", zap.String("platform", string(platform)))

	system := (&probe.SystemProber{
		Runner:   r,
		Platform: platform,
		Native:   native,
		Timeout:  opts.CommandTimeout,
		Log:      log,
	}).Detect(ctx)
	if _, ok := system.Evidence["platform"]; !ok {
		system.Evidence["platform"] = platformEv
	}

	detections := (&probe.SoftwareProber{
		Runner:       r,
		Platform:     platform,
		Architecture: system.Architecture,
		Timeout:      opts.CommandTimeout,
		Concurrency:  opts.Concurrency,
		Log:          log,
	}).DetectAll(ctx, opts.Targets)

	meta := report.Metadata{
		AgentID:        report.NewScanID(),
		Timestamp:      report.Timestamp(time.Now()),
		ScanType:       string(modeOrLocal(opts.Mode)),
		TargetHost:     targetHost(opts, system),
		AgentVersion:   opts.AgentVersion,
		ScanDurationMs: time.Since(start).Milliseconds(),
		TargetsLoaded:  len(opts.Targets),
	}
	if opts.Mode == ModeRemote {
		meta.TargetUser = opts.Target.User
	}

	rep := report.Assemble(meta, system, detections)
	log.Info("scan complete",
		zap.String("scan_id", meta.AgentID),
		zap.Int64("duration_ms", meta.ScanDurationMs),
		zap.Int("software_found", len(rep.SoftwareInventory)))
	return rep
}

func modeOrLocal(m Mode) Mode {
	if m == ModeRemote {
		return ModeRemote
	}
	return ModeLocal
}

func targetHost(opts Options, system probe.SystemInfo) string {
	if opts.Mode == ModeRemote {
		return opts.Target.Host
	}
	if system.Hostname != "" && system.Hostname != "unknown" {
		return system.Hostname
	}
	return "localhost"
}
