package probe

import (
	"regexp"
	"strings"
)

// Ordered most-specific first so "2.50.1" is not truncated to "2.50".
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`),
	regexp.MustCompile(`\d+\.\d+\.\d+`),
	regexp.MustCompile(`\d+\.\d+`),
}

// ExtractVersionToken pulls the first version-like token out of command
// output, or returns "" when none is found.
func ExtractVersionToken(output string) string {
	for _, pat := range versionPatterns {
		if m := pat.FindString(output); m != "" {
			return m
		}
	}
	return ""
}

// parseVersionOutput applies the permissive version strategy to raw command
// output: a version token from the first line, else the full trimmed first
// line, else "unknown".
func parseVersionOutput(output string) string {
	line := firstLine(output)
	if tok := ExtractVersionToken(line); tok != "" {
		return tok
	}
	if line != "" {
		return line
	}
	return unknownValue
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
