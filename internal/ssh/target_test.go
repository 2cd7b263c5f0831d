package ssh

import (
	"testing"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in       string
		wantUser string
		wantHost string
		wantPort string
	}{
		{"admin@server.example.com", "admin", "server.example.com", "22"},
		{"admin@10.0.0.5:2222", "admin", "10.0.0.5", "2222"},
		{"root@host:22", "root", "host", "22"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTarget(tc.in)
			if err != nil {
				t.Fatalf("ParseTarget(%q): %v", tc.in, err)
			}
			if got.User != tc.wantUser || got.Host != tc.wantHost || got.Port != tc.wantPort {
				t.Errorf("ParseTarget(%q) = %+v, want %s@%s:%s",
					tc.in, got, tc.wantUser, tc.wantHost, tc.wantPort)
			}
		})
	}
}

func TestParseTarget_DefaultsUser(t *testing.T) {
	got, err := ParseTarget("server.example.com")
	if err != nil {
		t.Fatalf("ParseTarget: %v", err)
	}
	if got.Host != "server.example.com" {
		t.Errorf("host = %q", got.Host)
	}
	if got.User == "" {
		t.Error("user should default to the current OS user")
	}
}

func TestParseTarget_Invalid(t *testing.T) {
	for _, in := range []string{"", "user@", "@host"} {
		if _, err := ParseTarget(in); err == nil {
			t.Errorf("ParseTarget(%q) should fail", in)
		}
	}
}

func TestTargetAddrAndString(t *testing.T) {
	tgt := Target{User: "admin", Host: "server", Port: "22"}
	if tgt.Addr() != "server:22" {
		t.Errorf("Addr() = %q", tgt.Addr())
	}
	if tgt.String() != "admin@server" {
		t.Errorf("String() = %q", tgt.String())
	}

	tgt.Port = "2222"
	if tgt.String() != "admin@server:2222" {
		t.Errorf("String() = %q", tgt.String())
	}
}
