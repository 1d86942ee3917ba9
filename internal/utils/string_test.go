package utils

import "testing"

func TestTruncate(t *testing.T) {
	testCases := []struct {
		in     string
		limit  int
		suffix string
		want   string
	}{
		{"short", 10, "…", "short"},
		{"exactly10!", 10, "…", "exactly10!"},
		{"this is too long", 10, "…", "this is t…"},
		{"no suffix here", 5, "", "no su"},
		{"ünïcödé text", 5, "", "ünïcö"},
		{"abc", 1, "...", "."},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			if got := Truncate(tc.in, tc.limit, tc.suffix); got != tc.want {
				t.Errorf("Truncate(%q, %d, %q) = %q, want %q", tc.in, tc.limit, tc.suffix, got, tc.want)
			}
		})
	}
}

func TestSuggestionFilter(t *testing.T) {
	f := NewSuggestionFilter()
	if !f.ShouldInclude("Client") {
		t.Fatal("first occurrence should be included")
	}
	if f.ShouldInclude("Client") {
		t.Error("repeated word should be dropped")
	}
	if !f.ShouldInclude("client") {
		t.Error("word differing only in case should be included")
	}
	if !f.ShouldInclude("Guild") {
		t.Error("new word should be included")
	}
}

func TestConfigDirFor(t *testing.T) {
	env := map[string]string{"XDG_CONFIG_HOME": "/xdg"}
	getenv := func(k string) string { return env[k] }

	if got := ConfigDirFor("linux", "/home/u", getenv); got != "/xdg/docserve" {
		t.Errorf("linux with XDG: got %s", got)
	}
	if got := ConfigDirFor("darwin", "/Users/u", getenv); got != "/Users/u/.config/docserve" {
		t.Errorf("darwin: got %s", got)
	}
	if got := ConfigDirFor("plan9", "/usr/u", getenv); got != "/usr/u/.docserve" {
		t.Errorf("fallback: got %s", got)
	}
}
