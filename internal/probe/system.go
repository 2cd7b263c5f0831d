package probe

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/apatole-r7/fingerprint-agent/internal/evidence"
	"github.com/apatole-r7/fingerprint-agent/internal/runner"
)

const unknownValue = "unknown"

// SystemInfo is the host fingerprint. Every field is present in the JSON
// schema even when undetermined: string fields carry "unknown", counts
// carry zero, and Evidence explains how each value was obtained.
type SystemInfo struct {
	OS           string                       `json:"os"`
	Version      string                       `json:"version"`
	Kernel       string                       `json:"kernel"`
	CPU          string                       `json:"cpu"`
	Architecture string                       `json:"architecture"`
	Hostname     string                       `json:"hostname"`
	CPUCount     int                          `json:"cpu_count"`
	MemoryGB     float64                      `json:"memory_gb"`
	Evidence     map[string]evidence.Evidence `json:"evidence"`
}

// SystemProber detects host facts through a Runner. Native enables
// in-process gopsutil fallbacks for fields whose commands produced
// nothing; it is set only for local scans.
type SystemProber struct {
	Runner   runner.Runner
	Platform Platform
	Native   bool
	Timeout  time.Duration
	Log      *zap.Logger
}

// Detect gathers all system fields. Each field is attempted independently:
// a failed command leaves "unknown" plus its Evidence and the next field
// still runs. One attempt per command, no retries.
func (p *SystemProber) Detect(ctx context.Context) SystemInfo {
	info := SystemInfo{
		OS:           unknownValue,
		Version:      unknownValue,
		Kernel:       unknownValue,
		CPU:          unknownValue,
		Architecture: unknownValue,
		Hostname:     unknownValue,
		Evidence:     map[string]evidence.Evidence{},
	}

	p.detectOS(ctx, &info)
	p.detectVersion(ctx, &info)
	p.detectKernel(ctx, &info)
	p.detectCPU(ctx, &info)
	p.detectArchitecture(ctx, &info)
	p.detectHostname(ctx, &info)
	p.detectCPUCount(ctx, &info)
	p.detectMemory(ctx, &info)

	p.Log.Info("system detection complete",
		zap.String("os", info.OS),
		zap.String("version", info.Version),
		zap.String("architecture", info.Architecture))
	return info
}

// firstOf runs candidate commands until one succeeds with output. The
// winning attempt's Evidence is stored under field; if all fail, the last
// attempt's Evidence is kept so the report shows what was tried.
func (p *SystemProber) firstOf(ctx context.Context, field string, commands []string, info *SystemInfo) string {
	if len(commands) == 0 {
		info.Evidence[field] = evidence.Evidence{
			RawOutput: "no probe for platform " + string(p.Platform),
		}
		return ""
	}
	var last evidence.Evidence
	for _, cmd := range commands {
		_, ev := evidence.Capture(ctx, p.Runner, cmd, p.Timeout)
		if ev.Succeeded && ev.RawOutput != "" {
			info.Evidence[field] = ev
			return ev.RawOutput
		}
		last = ev
	}
	info.Evidence[field] = last
	return ""
}

func (p *SystemProber) detectOS(ctx context.Context, info *SystemInfo) {
	switch p.Platform {
	case PlatformDarwin:
		info.OS = "macOS"
		info.Evidence["os"] = evidence.Native("platform family", "macOS")
	case PlatformWindows:
		info.OS = "Windows"
		info.Evidence["os"] = evidence.Native("platform family", "Windows")
	case PlatformLinux:
		out := p.firstOf(ctx, "os", []string{
			`cat /etc/os-release 2>/dev/null | grep '^NAME=' | cut -d'=' -f2 | tr -d '"'`,
			`lsb_release -si 2>/dev/null`,
			`cat /etc/issue 2>/dev/null | head -n 1`,
		}, info)
		if out != "" {
			info.OS = strings.Fields(out)[0]
		} else {
			info.OS = "Linux"
		}
	default:
		if p.Native {
			if hi, err := host.Info(); err == nil && hi.Platform != "" {
				info.OS = hi.Platform
				info.Evidence["os"] = evidence.Native("gopsutil:host.Info()", hi.Platform)
			}
		}
		if _, ok := info.Evidence["os"]; !ok {
			info.Evidence["os"] = evidence.Evidence{RawOutput: "platform family unknown"}
		}
	}
}

func (p *SystemProber) detectVersion(ctx context.Context, info *SystemInfo) {
	var commands []string
	switch p.Platform {
	case PlatformDarwin:
		commands = []string{"sw_vers -productVersion"}
	case PlatformLinux:
		commands = []string{
			`cat /etc/os-release 2>/dev/null | grep '^VERSION_ID=' | cut -d'=' -f2 | tr -d '"'`,
			`lsb_release -sr 2>/dev/null`,
			`uname -r`,
		}
	case PlatformWindows:
		commands = []string{"ver"}
	}

	if out := p.firstOf(ctx, "version", commands, info); out != "" {
		info.Version = firstLine(out)
		return
	}
	if p.Native {
		if hi, err := host.Info(); err == nil && hi.PlatformVersion != "" {
			info.Version = hi.PlatformVersion
			info.Evidence["version"] = evidence.Native("gopsutil:host.Info()", hi.PlatformVersion)
		}
	}
}

func (p *SystemProber) detectKernel(ctx context.Context, info *SystemInfo) {
	commands := []string{"uname -r"}
	if p.Platform == PlatformWindows {
		commands = []string{"ver"}
	}

	if out := p.firstOf(ctx, "kernel", commands, info); out != "" {
		info.Kernel = firstLine(out)
		return
	}
	if p.Native {
		if hi, err := host.Info(); err == nil && hi.KernelVersion != "" {
			info.Kernel = hi.KernelVersion
			info.Evidence["kernel"] = evidence.Native("gopsutil:host.Info()", hi.KernelVersion)
		}
	}
}

func (p *SystemProber) detectCPU(ctx context.Context, info *SystemInfo) {
	var commands []string
	switch p.Platform {
	case PlatformDarwin:
		commands = []string{"sysctl -n machdep.cpu.brand_string"}
	case PlatformLinux:
		commands = []string{
			`cat /proc/cpuinfo | grep 'model name' | head -n 1 | cut -d':' -f2`,
			`lscpu | grep 'Model name' | cut -d':' -f2`,
		}
	case PlatformWindows:
		commands = []string{"wmic cpu get name"}
	}

	if out := p.firstOf(ctx, "cpu", commands, info); out != "" {
		if p.Platform == PlatformWindows {
			// wmic prints a header line before the value.
			lines := strings.Split(out, "\n")
			if len(lines) > 1 {
				out = lines[1]
			}
		}
		info.CPU = strings.TrimSpace(firstLine(out))
		return
	}
	if p.Native {
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 && infos[0].ModelName != "" {
			info.CPU = infos[0].ModelName
			info.Evidence["cpu"] = evidence.Native("gopsutil:cpu.Info()", infos[0].ModelName)
		}
	}
}

func (p *SystemProber) detectArchitecture(ctx context.Context, info *SystemInfo) {
	commands := []string{"uname -m"}
	if p.Platform == PlatformWindows {
		commands = []string{"echo %PROCESSOR_ARCHITECTURE%"}
	}

	if out := p.firstOf(ctx, "architecture", commands, info); out != "" {
		info.Architecture = firstLine(out)
		return
	}
	if p.Native {
		if arch, err := host.KernelArch(); err == nil && arch != "" {
			info.Architecture = arch
			info.Evidence["architecture"] = evidence.Native("gopsutil:host.KernelArch()", arch)
		}
	}
}

func (p *SystemProber) detectHostname(ctx context.Context, info *SystemInfo) {
	if out := p.firstOf(ctx, "hostname", []string{"hostname"}, info); out != "" {
		info.Hostname = firstLine(out)
		return
	}
	if p.Native {
		if hi, err := host.Info(); err == nil && hi.Hostname != "" {
			info.Hostname = hi.Hostname
			info.Evidence["hostname"] = evidence.Native("gopsutil:host.Info()", hi.Hostname)
		}
	}
}

func (p *SystemProber) detectCPUCount(ctx context.Context, info *SystemInfo) {
	var commands []string
	switch p.Platform {
	case PlatformDarwin:
		commands = []string{"sysctl -n hw.ncpu"}
	case PlatformWindows:
		commands = []string{"echo %NUMBER_OF_PROCESSORS%"}
	default:
		commands = []string{"nproc"}
	}

	if out := p.firstOf(ctx, "cpu_count", commands, info); out != "" {
		if n, err := strconv.Atoi(firstLine(out)); err == nil {
			info.CPUCount = n
			return
		}
	}
	if p.Native {
		if n, err := cpu.Counts(true); err == nil {
			info.CPUCount = n
			info.Evidence["cpu_count"] = evidence.Native("gopsutil:cpu.Counts(true)", strconv.Itoa(n))
		}
	}
}

func (p *SystemProber) detectMemory(ctx context.Context, info *SystemInfo) {
	switch p.Platform {
	case PlatformDarwin:
		if out := p.firstOf(ctx, "memory_gb", []string{"sysctl -n hw.memsize"}, info); out != "" {
			if b, err := strconv.ParseInt(firstLine(out), 10, 64); err == nil {
				info.MemoryGB = roundGB(float64(b) / (1 << 30))
				return
			}
		}
	case PlatformWindows:
		if out := p.firstOf(ctx, "memory_gb", []string{"wmic ComputerSystem get TotalPhysicalMemory"}, info); out != "" {
			for _, line := range strings.Split(out, "\n") {
				if b, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64); err == nil {
					info.MemoryGB = roundGB(float64(b) / (1 << 30))
					return
				}
			}
		}
	default:
		if out := p.firstOf(ctx, "memory_gb", []string{
			`grep MemTotal /proc/meminfo | awk '{print $2}'`,
		}, info); out != "" {
			if kb, err := strconv.ParseInt(firstLine(out), 10, 64); err == nil {
				info.MemoryGB = roundGB(float64(kb) / (1 << 20))
				return
			}
		}
	}

	if p.Native {
		if vm, err := mem.VirtualMemory(); err == nil {
			gb := roundGB(float64(vm.Total) / (1 << 30))
			info.MemoryGB = gb
			info.Evidence["memory_gb"] = evidence.Native("gopsutil:mem.VirtualMemory()", fmt.Sprintf("%.2f", gb))
		}
	}
}

func roundGB(gb float64) float64 {
	return math.Round(gb*100) / 100
}
