// Package probe implements the detection engine: system fingerprinting and
// declarative software detection, each fact backed by Evidence.
package probe

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/apatole-r7/fingerprint-agent/internal/evidence"
	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

// Platform is the OS family used to pick detection commands. It is
// resolved once per scan and then consulted as a plain map key.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform resolves the target's OS family. Local scans read the
// compiled-in runtime value; remote scans probe with uname, then ver for
// Windows hosts. An undeterminable family degrades to PlatformUnknown and
// the scan carries on with unknown fields.
func DetectPlatform(ctx context.Context, r runner.Runner, timeout time.Duration, native bool) (Platform, evidence.Evidence) {
	if native {
		p := platformFromGOOS(runtime.GOOS)
		return p, evidence.Native("runtime.GOOS", runtime.GOOS)
	}

	_, ev := evidence.Capture(ctx, r, "uname -s", timeout)
	if ev.Succeeded {
		switch {
		case strings.HasPrefix(ev.RawOutput, "Linux"):
			return PlatformLinux, ev
		case strings.HasPrefix(ev.RawOutput, "Darwin"):
			return PlatformDarwin, ev
		}
	}

	_, verEv := evidence.Capture(ctx, r, "ver", timeout)
	if verEv.Succeeded && strings.Contains(verEv.RawOutput, "Windows") {
		return PlatformWindows, verEv
	}

	return PlatformUnknown, ev
}

func platformFromGOOS(goos string) Platform {
	switch goos {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnknown
	}
}
