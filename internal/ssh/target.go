package ssh

import (
	"fmt"
	"net"
	"os/user"
	"strings"
)

// Target identifies a remote scan target parsed from [user@]host[:port].
type Target struct {
	User string
	Host string
	Port string
}

// ParseTarget parses strings like "admin@server", "server:2222", or
// "admin@server:2222". The user defaults to the current OS user, the port
// to 22.
func ParseTarget(s string) (Target, error) {
	t := Target{Port: "22"}

	s = strings.TrimSpace(s)
	if s == "" {
		return t, fmt.Errorf("empty SSH target")
	}

	hostPort := s
	if i := strings.Index(s, "@"); i >= 0 {
		if i == 0 {
			return t, fmt.Errorf("invalid SSH target %q (expected [user@]host[:port])", s)
		}
		t.User = s[:i]
		hostPort = s[i+1:]
	}

	if h, p, err := net.SplitHostPort(hostPort); err == nil {
		t.Host = h
		t.Port = p
	} else {
		t.Host = hostPort
	}

	if t.Host == "" {
		return t, fmt.Errorf("invalid SSH target %q (expected [user@]host[:port])", s)
	}

	if t.User == "" {
		if u, err := user.Current(); err == nil {
			t.User = u.Username
		}
	}
	if t.User == "" {
		return t, fmt.Errorf("no user in SSH target %q and current user unknown", s)
	}

	return t, nil
}

// Addr returns the host:port for dialing.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, t.Port)
}

func (t Target) String() string {
	if t.Port == "22" {
		return t.User + "@" + t.Host
	}
	return fmt.Sprintf("%s@%s:%s", t.User, t.Host, t.Port)
}
