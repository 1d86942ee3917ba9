package utils

// SuggestionFilter drops repeated suggestions. Names are compared exactly,
// so "FAQ" and "faq" are two suggestions.
// It is not safe for concurrent use; make one per request.
type SuggestionFilter struct {
	seen map[string]bool
}

// NewSuggestionFilter creates an empty filter
func NewSuggestionFilter() *SuggestionFilter {
	return &SuggestionFilter{seen: make(map[string]bool)}
}

// ShouldInclude reports whether word has not been seen yet, and marks it seen
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	if f.seen[word] {
		return false
	}
	f.seen[word] = true
	return true
}
