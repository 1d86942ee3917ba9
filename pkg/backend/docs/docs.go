/*
Package docs serves documentation symbol suggestions for named doc sources.

Each source is a generated documentation JSON document:

	{
	  "classes":    [{"name": "Client", "props": [{"name": "user"}], "methods": [{"name": "login"}], "events": [{"name": "ready"}]}],
	  "interfaces": [{"name": "ClientOptions", "props": [{"name": "intents"}]}],
	  "typedefs":   [{"name": "Snowflake"}]
	}

and is flattened into symbols: "Client", "Client#user", "Client#login()", "Client#ready (event)".
The value of a method or event choice drops the decoration ("Client#login", "Client#ready").

A source is loaded on first use, from an http(s) URL or a local file, and kept for the
life of the Index. Concurrent first uses of the same source share one load.
*/
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/fuzzy"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

type member struct {
	Name string `json:"name"`
}

type container struct {
	Name    string   `json:"name"`
	Props   []member `json:"props"`
	Methods []member `json:"methods"`
	Events  []member `json:"events"`
}

// Document is the subset of a generated docs JSON that gets indexed.
type Document struct {
	Classes    []container `json:"classes"`
	Interfaces []container `json:"interfaces"`
	Typedefs   []member    `json:"typedefs"`
}

// Symbol is one indexed documentation entry.
type Symbol struct {
	Name     string
	Value    string
	TopLevel bool
}

// Symbols flattens a document.
func (d Document) Symbols() []Symbol {
	var out []Symbol
	add := func(c container) {
		out = append(out, Symbol{Name: c.Name, Value: c.Name, TopLevel: true})
		for _, p := range c.Props {
			path := c.Name + "#" + p.Name
			out = append(out, Symbol{Name: path, Value: path})
		}
		for _, m := range c.Methods {
			path := c.Name + "#" + m.Name
			out = append(out, Symbol{Name: path + "()", Value: path})
		}
		for _, e := range c.Events {
			path := c.Name + "#" + e.Name
			out = append(out, Symbol{Name: path + " (event)", Value: path})
		}
	}
	for _, c := range d.Classes {
		add(c)
	}
	for _, c := range d.Interfaces {
		add(c)
	}
	for _, t := range d.Typedefs {
		out = append(out, Symbol{Name: t.Name, Value: t.Name, TopLevel: true})
	}
	return out
}

// Fetcher reads a source document from its location.
type Fetcher func(ctx context.Context, location string) ([]byte, error)

type sourceIndex struct {
	symbols  []Symbol
	trie     *patricia.Trie // lowercase path and member name -> []int (symbol positions)
	topLevel []int
	matcher  *fuzzy.Matcher
}

type slot struct {
	mu  sync.Mutex
	idx *sourceIndex
}

// Index is the docs backend.
type Index struct {
	locations map[string]string
	fetch     Fetcher
	limit     int

	mu    sync.Mutex
	slots map[string]*slot
}

// NewIndex creates an index over the named sources. A nil fetch uses HTTP for
// http(s) locations and the filesystem otherwise.
func NewIndex(locations map[string]string, fetch Fetcher, limit int) *Index {
	if fetch == nil {
		fetch = DefaultFetcher(http.DefaultClient)
	}
	locs := make(map[string]string, len(locations))
	for k, v := range locations {
		locs[k] = v
	}
	return &Index{
		locations: locs,
		fetch:     fetch,
		limit:     limit,
		slots:     make(map[string]*slot),
	}
}

// DefaultFetcher reads http(s) URLs with client and anything else as a file path.
func DefaultFetcher(client *http.Client) Fetcher {
	return func(ctx context.Context, location string) ([]byte, error) {
		if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
			return os.ReadFile(location)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("GET %s: %s", location, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
}

// Sources returns the configured source names, sorted.
func (i *Index) Sources() []string {
	out := make([]string, 0, len(i.locations))
	for k := range i.locations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Preload loads every source, stopping at the first failure.
func (i *Index) Preload(ctx context.Context) error {
	for _, name := range i.Sources() {
		if _, err := i.source(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Resolve suggests symbols of q.Source matching q.Text.
func (i *Index) Resolve(ctx context.Context, q backend.Query) ([]backend.Choice, error) {
	idx, err := i.source(ctx, q.Source)
	if err != nil {
		return nil, err
	}
	positions := idx.lookup(strings.ToLower(strings.TrimSpace(q.Text)), i.limit)
	choices := make([]backend.Choice, 0, len(positions))
	for _, p := range positions {
		s := idx.symbols[p]
		choices = append(choices, backend.NewChoice(s.Name, s.Value))
	}
	return choices, nil
}

func (i *Index) source(ctx context.Context, name string) (*sourceIndex, error) {
	location, ok := i.locations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", backend.ErrNoSource, name)
	}

	i.mu.Lock()
	s := i.slots[name]
	if s == nil {
		s = &slot{}
		i.slots[name] = s
	}
	i.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		return s.idx, nil
	}

	data, err := i.fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("docs source %q: %w", name, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("docs source %q: decoding: %w", name, err)
	}
	s.idx = build(doc.Symbols())
	log.Debugf("docs source %s loaded with %d symbols", name, len(s.idx.symbols))
	return s.idx, nil
}

func build(symbols []Symbol) *sourceIndex {
	idx := &sourceIndex{symbols: symbols, trie: patricia.NewTrie()}
	names := make([]string, len(symbols))
	for pos, s := range symbols {
		names[pos] = s.Value
		if s.TopLevel {
			idx.topLevel = append(idx.topLevel, pos)
		}
		lower := strings.ToLower(s.Value)
		idx.insert(lower, pos)
		if _, memberName, ok := strings.Cut(lower, "#"); ok {
			idx.insert(memberName, pos)
		}
	}
	sort.SliceStable(idx.topLevel, func(a, b int) bool {
		return symbols[idx.topLevel[a]].Value < symbols[idx.topLevel[b]].Value
	})
	idx.matcher = fuzzy.NewMatcher(names)
	return idx
}

func (idx *sourceIndex) insert(term string, pos int) {
	key := patricia.Prefix(term)
	if item := idx.trie.Get(key); item != nil {
		idx.trie.Set(key, append(item.([]int), pos))
		return
	}
	idx.trie.Insert(key, []int{pos})
}

// lookup returns symbol positions: exact path, then path or member prefix
// (shorter first), then fuzzy matches on the path.
func (idx *sourceIndex) lookup(query string, limit int) []int {
	if query == "" {
		return capped(idx.topLevel, limit)
	}

	seen := make(map[int]bool)
	var exact, prefix []int
	err := idx.trie.VisitSubtree(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		for _, pos := range item.([]int) {
			if seen[pos] {
				continue
			}
			seen[pos] = true
			if strings.ToLower(idx.symbols[pos].Value) == query {
				exact = append(exact, pos)
			} else {
				prefix = append(prefix, pos)
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting docs trie: %v", err)
	}
	sort.SliceStable(prefix, func(a, b int) bool {
		va, vb := idx.symbols[prefix[a]].Value, idx.symbols[prefix[b]].Value
		if len(va) != len(vb) {
			return len(va) < len(vb)
		}
		return va < vb
	})

	out := append(exact, prefix...)
	if limit > 0 && len(out) >= limit {
		return out[:limit]
	}
	for _, m := range idx.matcher.Rank(query, limit) {
		for pos, s := range idx.symbols {
			if s.Value == m.Str && !seen[pos] {
				seen[pos] = true
				out = append(out, pos)
			}
		}
	}
	return capped(out, limit)
}

func capped(positions []int, limit int) []int {
	if limit > 0 && len(positions) > limit {
		return positions[:limit]
	}
	return positions
}
