package fuzzy

import (
	"fmt"
	"testing"
)

// preference: `start of word > adjacent runs > separators/camelCase > shorter candidate`
func TestRank(t *testing.T) {
	candidates := []string{
		"faq", "fail", "features",
		"guild", "guildMember", "getting-started",
		"ping", "promise", "Promise.all",
	}
	matcher := NewMatcher(candidates)

	testCases := []struct {
		pattern     string
		expected    []string
		description string
	}{
		{"fa", []string{"faq", "fail", "features"}, "Adjacent prefix beats scattered match"},
		{"gm", []string{"guildMember"}, "camelCase boundary"},
		{"gs", []string{"getting-started"}, "Separator boundary"},
		{"FAQ", []string{"faq"}, "Case insensitive"},
		{"xyz", nil, "No match"},
		{"ug", nil, "Different first letter"},
		{"pa", []string{"Promise.all"}, "Dot separator"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := names(matcher.Rank(tc.pattern, 0))
			if fmt.Sprint(got) != fmt.Sprint(tc.expected) {
				t.Errorf("Pattern '%s': expected %v, got %v", tc.pattern, tc.expected, got)
			}
		})
	}
}

func TestRankLimit(t *testing.T) {
	matcher := NewMatcher([]string{"faq", "fail", "features"})
	got := names(matcher.Rank("fa", 2))
	if fmt.Sprint(got) != fmt.Sprint([]string{"faq", "fail"}) {
		t.Errorf("expected first two matches, got %v", got)
	}
}

func TestMatcherOwnsCandidates(t *testing.T) {
	candidates := []string{"guild", "ping"}
	matcher := NewMatcher(candidates)
	candidates[0] = "gateway"

	got := names(matcher.Rank("gu", 0))
	if fmt.Sprint(got) != fmt.Sprint([]string{"guild"}) {
		t.Errorf("matcher should keep its own candidate list, got %v", got)
	}
	if matcher.Len() != 2 {
		t.Errorf("expected 2 candidates, got %d", matcher.Len())
	}
}

func TestEmptyInputs(t *testing.T) {
	if got := NewMatcher(nil).Rank("test", 0); len(got) != 0 {
		t.Errorf("Empty matcher should not match, got %v", got)
	}
	if got := NewMatcher([]string{"a"}).Rank("", 0); len(got) != 0 {
		t.Errorf("Empty pattern should not match, got %v", got)
	}
}

func names(ms []Match) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Str)
	}
	return out
}

func BenchmarkRank(b *testing.B) {
	candidates := make([]string, 1000)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("word%d", i)
	}
	matcher := NewMatcher(candidates)

	b.ResetTimer()
	inputs := []string{"wrd123", "word1", "wordd2", "woord3", "wird4"}
	for i := 0; i < b.N; i++ {
		matcher.Rank(inputs[i%len(inputs)], 25)
	}
}
