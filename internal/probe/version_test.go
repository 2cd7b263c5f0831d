package probe

import "testing"

func TestExtractVersionToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"git version 2.50.1", "2.50.1"},
		{"Docker version 27.1.1, build 6312585", "27.1.1"},
		{"Python 3.12.4", "3.12.4"},
		{"v1.2", "1.2"},
		{"10.0.19045.4651", "10.0.19045.4651"},
		{"no digits here", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractVersionToken(tc.in); got != tc.want {
			t.Errorf("ExtractVersionToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseVersionOutput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"git version 2.50.1\nbuilt from source", "2.50.1"},
		{"rev abc-def", "rev abc-def"},
		{"", "unknown"},
		{"   \n\n", "unknown"},
	}
	for _, tc := range cases {
		if got := parseVersionOutput(tc.in); got != tc.want {
			t.Errorf("parseVersionOutput(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("  a b \n second"); got != "a b" {
		t.Errorf("firstLine = %q", got)
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine = %q", got)
	}
}
