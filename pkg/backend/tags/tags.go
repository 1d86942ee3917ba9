/*
Package tags serves tag-name suggestions from an in-memory tag cache.

Tags are loaded from a TOML file, one table per tag:

	[faq]
	keywords = ["questions", "help"]
	content = "Read the FAQ first."

Every tag name and keyword is indexed lowercase in a patricia trie, so typing a prefix of
either finds the tag. Results are ordered: exact name, name prefix, keyword prefix,
name substring, then fuzzy matches on the name. An empty query lists tags in name order.

The cache is read-only for callers. Replace swaps in a new snapshot atomically, so a
refresh never blocks or disturbs in-flight lookups.
*/
package tags

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/docserve/internal/utils"
	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/fuzzy"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Tag is a named canned response.
type Tag struct {
	Name     string   `toml:"-"`
	Keywords []string `toml:"keywords"`
	Content  string   `toml:"content"`
}

// LoadFile reads tags from a TOML file.
func LoadFile(path string) ([]Tag, error) {
	raw := map[string]Tag{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("tags: reading %s: %w", path, err)
	}
	out := make([]Tag, 0, len(raw))
	for name, t := range raw {
		t.Name = name
		out = append(out, t)
	}
	return out, nil
}

type snapshot struct {
	terms   *patricia.Trie // lowercase name or keyword -> *entry
	names   []string       // sorted
	byName  map[string]Tag
	matcher *fuzzy.Matcher
}

type entry struct {
	names    []string // tags whose name is this term
	keywords []string // tags with this term as a keyword
}

// Cache is the tag-cache backend.
type Cache struct {
	current atomic.Pointer[snapshot]
	limit   int
}

// NewCache builds a cache over tags. limit caps the choices per lookup.
func NewCache(tags []Tag, limit int) *Cache {
	c := &Cache{limit: limit}
	c.Replace(tags)
	return c
}

// Replace swaps the cached tags.
func (c *Cache) Replace(tags []Tag) {
	s := &snapshot{
		terms:  patricia.NewTrie(),
		byName: make(map[string]Tag, len(tags)),
	}
	for _, t := range tags {
		if t.Name == "" {
			continue
		}
		s.byName[t.Name] = t
		s.names = append(s.names, t.Name)
		index(s.terms, strings.ToLower(t.Name), func(e *entry) { e.names = append(e.names, t.Name) })
		for _, kw := range t.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				index(s.terms, kw, func(e *entry) { e.keywords = append(e.keywords, t.Name) })
			}
		}
	}
	sort.Strings(s.names)
	s.matcher = fuzzy.NewMatcher(s.names)
	c.current.Store(s)
	log.Debugf("tag cache holds %d tags", len(s.names))
}

func index(trie *patricia.Trie, term string, add func(*entry)) {
	key := patricia.Prefix(term)
	if item := trie.Get(key); item != nil {
		add(item.(*entry))
		return
	}
	e := &entry{}
	add(e)
	trie.Insert(key, e)
}

// Len returns the number of cached tags.
func (c *Cache) Len() int {
	return len(c.current.Load().names)
}

// Get returns a tag by exact name.
func (c *Cache) Get(name string) (Tag, bool) {
	t, ok := c.current.Load().byName[name]
	return t, ok
}

// Resolve suggests tag names for q.Text. Choice name and value are both the tag name.
func (c *Cache) Resolve(_ context.Context, q backend.Query) ([]backend.Choice, error) {
	s := c.current.Load()
	names := s.lookup(strings.ToLower(strings.TrimSpace(q.Text)), c.limit)
	choices := make([]backend.Choice, 0, len(names))
	for _, n := range names {
		choices = append(choices, backend.NewChoice(n, n))
	}
	return choices, nil
}

func (s *snapshot) lookup(query string, limit int) []string {
	if query == "" {
		return capped(s.names, limit)
	}

	var exact, namePrefix, keywordPrefix []string
	err := s.terms.VisitSubtree(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		e := item.(*entry)
		if string(p) == query {
			exact = append(exact, e.names...)
		} else {
			namePrefix = append(namePrefix, e.names...)
		}
		keywordPrefix = append(keywordPrefix, e.keywords...)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting tag trie: %v", err)
	}
	sort.Strings(exact)
	sort.Strings(namePrefix)
	sort.Strings(keywordPrefix)

	var substring []string
	for _, n := range s.names {
		if utils.StringContainsIgnoreCase(n, query) {
			substring = append(substring, n)
		}
	}

	var fuzzyHits []string
	for _, m := range s.matcher.Rank(query, limit) {
		fuzzyHits = append(fuzzyHits, m.Str)
	}

	filter := utils.NewSuggestionFilter()
	var out []string
	for _, group := range [][]string{exact, namePrefix, keywordPrefix, substring, fuzzyHits} {
		for _, n := range group {
			if filter.ShouldInclude(n) {
				out = append(out, n)
			}
		}
	}
	return capped(out, limit)
}

func capped(names []string, limit int) []string {
	if limit > 0 && len(names) > limit {
		return names[:limit]
	}
	return names
}
