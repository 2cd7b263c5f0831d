package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/apatole-r7/fingerprint-agent/internal/config"
	"github.com/apatole-r7/fingerprint-agent/internal/evidence"
	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

// SoftwareEvidence groups the audit trail of one software record.
type SoftwareEvidence struct {
	Detection evidence.Evidence  `json:"detection"`
	Version   *evidence.Evidence `json:"version,omitempty"`
}

// SoftwareRecord describes one detected software product. Records are
// assembled and frozen within a single probe invocation.
type SoftwareRecord struct {
	ProductName   string           `json:"productName"`
	VersionNumber string           `json:"versionNumber"`
	Architecture  string           `json:"architecture"`
	ProductFamily string           `json:"productFamily"`
	Vendor        string           `json:"vendor"`
	InstallPath   string           `json:"installPath"`
	Evidence      SoftwareEvidence `json:"evidence"`
}

// Detection is the per-target outcome. Absent targets keep their detection
// Evidence here even though they are omitted from the report inventory.
type Detection struct {
	Target   config.SoftwareTarget
	Present  bool
	Record   *SoftwareRecord
	Evidence evidence.Evidence
}

// SoftwareProber resolves a declarative target list into detections.
// Targets are processed in declared order and results always come back in
// that order, whatever the Concurrency setting.
type SoftwareProber struct {
	Runner       runner.Runner
	Platform     Platform
	Architecture string
	Timeout      time.Duration
	Concurrency  int
	Log          *zap.Logger
}

// resolvedProbe is the platform-specific command pair for one target.
type resolvedProbe struct {
	detectCmd  string
	versionCmd string
}

// DetectAll probes every target. Failures never propagate: a target that
// cannot be probed is an absent Detection with explanatory Evidence, and
// the remaining targets still run. A cancelled context marks targets that
// have not started as aborted.
func (p *SoftwareProber) DetectAll(ctx context.Context, targets []config.SoftwareTarget) []Detection {
	results := make([]Detection, len(targets))

	if p.Concurrency <= 1 || len(targets) < 2 {
		for i, t := range targets {
			if ctx.Err() != nil {
				results[i] = p.aborted(t)
				continue
			}
			results[i] = p.detectOne(ctx, t)
		}
		return p.logAndReturn(results)
	}

	// Workers pull indexed targets and write results back by index so the
	// declared order survives out-of-order completion.
	type job struct {
		idx    int
		target config.SoftwareTarget
	}
	jobs := make(chan job)
	var wg sync.WaitGroup

	workers := p.Concurrency
	if workers > len(targets) {
		workers = len(targets)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results[j.idx] = p.aborted(j.target)
					continue
				}
				results[j.idx] = p.detectOne(ctx, j.target)
			}
		}()
	}
	for i, t := range targets {
		jobs <- job{idx: i, target: t}
	}
	close(jobs)
	wg.Wait()

	return p.logAndReturn(results)
}

func (p *SoftwareProber) logAndReturn(results []Detection) []Detection {
	present := 0
	for _, d := range results {
		if d.Present {
			present++
		}
	}
	p.Log.Info("software detection complete",
		zap.Int("targets", len(results)),
		zap.Int("present", present))
	return results
}

// detectOne runs the full per-target sequence: resolve the platform
// command, detect, resolve install path, then attempt a version command.
// Version failures degrade the record, never discard it.
func (p *SoftwareProber) detectOne(ctx context.Context, t config.SoftwareTarget) Detection {
	rp, ok := p.resolve(t)
	if !ok {
		return Detection{
			Target: t,
			Evidence: evidence.Evidence{
				CommandRun: "",
				RawOutput:  fmt.Sprintf("no detection command for platform %s", p.Platform),
				Succeeded:  false,
			},
		}
	}

	_, det := evidence.Capture(ctx, p.Runner, rp.detectCmd, p.Timeout)
	if !det.Succeeded || det.RawOutput == "" {
		p.Log.Debug("target not detected", zap.String("target", t.Name))
		return Detection{Target: t, Evidence: det}
	}

	installPath := firstLine(det.RawOutput)
	if installPath == "" {
		installPath = unknownValue
	}

	rec := &SoftwareRecord{
		ProductName:   t.Name,
		VersionNumber: unknownValue,
		Architecture:  p.Architecture,
		ProductFamily: NormalizeFamily(t.Family),
		Vendor:        vendorOrUnknown(t.Vendor),
		InstallPath:   installPath,
		Evidence:      SoftwareEvidence{Detection: det},
	}

	if rp.versionCmd != "" {
		cmd := strings.ReplaceAll(rp.versionCmd, "{app_path}", installPath)
		_, ver := evidence.Capture(ctx, p.Runner, cmd, p.Timeout)
		rec.Evidence.Version = &ver
		if ver.Succeeded && ver.RawOutput != "" {
			rec.VersionNumber = parseVersionOutput(ver.RawOutput)
		}
	} else if tok := ExtractVersionToken(det.RawOutput); tok != "" {
		// No version command configured; the detection output itself may
		// carry a version token.
		rec.VersionNumber = tok
	}

	p.Log.Debug("target detected",
		zap.String("target", t.Name),
		zap.String("version", rec.VersionNumber),
		zap.String("path", rec.InstallPath))
	return Detection{Target: t, Present: true, Record: rec, Evidence: det}
}

// resolve picks the detection command pair for the scan's platform: an
// explicit platform entry wins, otherwise the default executable name is
// probed with the platform's lookup command.
func (p *SoftwareProber) resolve(t config.SoftwareTarget) (resolvedProbe, bool) {
	if pp, ok := t.Detection[string(p.Platform)]; ok && pp.Command != "" {
		return resolvedProbe{detectCmd: pp.Command, versionCmd: pp.VersionCommand}, true
	}

	if t.Command == "" {
		return resolvedProbe{}, false
	}

	lookup := "command -v " + t.Command
	if p.Platform == PlatformWindows {
		lookup = "where " + t.Command
	}
	return resolvedProbe{
		detectCmd:  lookup,
		versionCmd: t.Command + " --version",
	}, true
}

func (p *SoftwareProber) aborted(t config.SoftwareTarget) Detection {
	cmd := t.Command
	if rp, ok := p.resolve(t); ok {
		cmd = rp.detectCmd
	}
	return Detection{Target: t, Evidence: evidence.Aborted(cmd)}
}

func vendorOrUnknown(vendor string) string {
	if vendor == "" {
		return "Unknown"
	}
	return vendor
}
