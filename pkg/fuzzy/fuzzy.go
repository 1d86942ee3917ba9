// Package fuzzy ranks candidate names against a partially typed pattern.
//
// A candidate matches when it contains every pattern rune in order (case-insensitive).
// Matches score higher when they start at the first character, follow a separator
// or a camelCase boundary, or run adjacent to the previous match; shorter
// candidates win ties.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bastiangx/docserve/internal/utils"
)

// Scoring weights
const (
	firstCharMatchBonus            = 15
	adjacentMatchBonus             = 10
	separatorMatchBonus            = 12
	camelCaseMatchBonus            = 12
	unmatchedLeadingCharPenalty    = -3
	maxUnmatchedLeadingCharPenalty = -9
)

// Match is a candidate that contains every pattern rune in order.
type Match struct {
	Str            string
	Score          int
	MatchedIndexes []int
}

// Matcher holds a fixed candidate list.
type Matcher struct {
	candidates []string
}

// NewMatcher creates a matcher over a copy of candidates.
func NewMatcher(candidates []string) *Matcher {
	c := make([]string, len(candidates))
	copy(c, candidates)
	return &Matcher{candidates: c}
}

// Len returns the number of candidates.
func (m *Matcher) Len() int {
	return len(m.candidates)
}

// Rank returns candidates matching pattern, best first, at most limit (0 = all).
// Ties keep candidate order.
func (m *Matcher) Rank(pattern string, limit int) []Match {
	matches := m.findMatches(pattern)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (m *Matcher) findMatches(pattern string) []Match {
	patternRunes := []rune(strings.ToLower(pattern))
	if len(patternRunes) == 0 {
		return nil
	}

	var matches []Match
	for _, candidate := range m.candidates {
		candidateRunes := []rune(candidate)
		if len(candidateRunes) == 0 {
			continue
		}
		// a different first letter is almost never what the user meant
		if len(patternRunes) > 1 && !utils.EqualFold(patternRunes[0], candidateRunes[0]) {
			continue
		}

		match := Match{
			Str:            candidate,
			MatchedIndexes: make([]int, 0, len(patternRunes)),
		}
		if scoreMatch(patternRunes, candidateRunes, &match) {
			match.Score += len(match.MatchedIndexes) - len(candidateRunes)
			matches = append(matches, match)
		}
	}
	return matches
}

// scoreMatch places each pattern rune at its first occurrence after the previous one.
// It reports whether every pattern rune was placed.
func scoreMatch(pattern, candidate []rune, match *Match) bool {
	pi := 0
	adjacent := 0
	for i, r := range candidate {
		if pi == len(pattern) {
			break
		}
		if !utils.EqualFold(r, pattern[pi]) {
			continue
		}

		score := 0
		if i == 0 {
			score += firstCharMatchBonus
		} else {
			prev := candidate[i-1]
			if unicode.IsLower(prev) && unicode.IsUpper(r) {
				score += camelCaseMatchBonus
			}
			if utils.IsSeparator(prev) {
				score += separatorMatchBonus
			}
		}

		n := len(match.MatchedIndexes)
		if n > 0 && match.MatchedIndexes[n-1] == i-1 {
			adjacent = adjacent*2 + adjacentMatchBonus
			score += adjacent
		} else {
			adjacent = 0
		}
		if n == 0 {
			score += max(i*unmatchedLeadingCharPenalty, maxUnmatchedLeadingCharPenalty)
		}

		match.Score += score
		match.MatchedIndexes = append(match.MatchedIndexes, i)
		pi++
	}
	return pi == len(pattern)
}
