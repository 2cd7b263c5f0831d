package config

import (
	"regexp"

	"go.uber.org/zap"
)

// Detection commands are required to be read-only. That is a catalog
// author's obligation, not something the runner enforces, so commands that
// look write-like are flagged at load time and still executed.
var mutatingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\b`),
	regexp.MustCompile(`\bmv\b`),
	regexp.MustCompile(`>`),
	regexp.MustCompile(`\bchmod\b`),
	regexp.MustCompile(`\bchown\b`),
	regexp.MustCompile(`\bmkdir\b`),
	regexp.MustCompile(`\btouch\b`),
	regexp.MustCompile(`\bsudo\b`),
	regexp.MustCompile(`\b(apt|apt-get|yum|dnf|pacman)\s+(install|remove|upgrade)\b`),
	regexp.MustCompile(`\bbrew\s+(install|uninstall|upgrade)\b`),
	regexp.MustCompile(`\bsystemctl\s+(start|stop|restart|enable|disable)\b`),
}

// looksMutating reports whether cmd matches a known write-like pattern.
func looksMutating(cmd string) bool {
	for _, pat := range mutatingPatterns {
		if pat.MatchString(cmd) {
			return true
		}
	}
	return false
}

func warnIfMutating(t SoftwareTarget, log *zap.Logger) {
	check := func(cmd, kind string) {
		if cmd != "" && looksMutating(cmd) {
			log.Warn("target command looks write-like; detection commands should be read-only",
				zap.String("target", t.Name),
				zap.String("kind", kind),
				zap.String("command", cmd))
		}
	}

	check(t.Command, "command")
	for platform, p := range t.Detection {
		check(p.Command, platform+" command")
		check(p.VersionCommand, platform+" version_command")
	}
}
