// Package mdn serves suggestions from a snapshot of the MDN web API reference index.
package mdn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Entry is one page of the index.
type Entry struct {
	Title string `json:"title" msgpack:"title"`
	URL   string `json:"url" msgpack:"url"`
}

// LoadFile reads an index snapshot. Files ending in .msgpack or .mpk are read as
// msgpack, anything else as JSON.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mdn: %w", err)
	}
	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		err = msgpack.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("mdn: decoding %s: %w", path, err)
	}
	return entries, nil
}

// SaveMsgpack writes entries as a msgpack snapshot, which loads faster than the JSON index.
func SaveMsgpack(path string, entries []Entry) error {
	data, err := msgpack.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type indexed struct {
	entries []Entry
	lower   []string
	values  []string
}

// Index is the MDN backend. It is read-only for callers; Replace swaps the snapshot.
type Index struct {
	current atomic.Pointer[indexed]
	limit   int
}

// NewIndex builds an index over entries. limit caps the choices per lookup.
func NewIndex(entries []Entry, limit int) *Index {
	idx := &Index{limit: limit}
	idx.Replace(entries)
	return idx
}

// Replace swaps the indexed entries. Entries whose URL cannot be submitted
// back as a choice value, even as a site-relative path, are left out.
func (idx *Index) Replace(entries []Entry) {
	s := &indexed{
		entries: make([]Entry, 0, len(entries)),
		lower:   make([]string, 0, len(entries)),
		values:  make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		v, ok := choiceValue(e.URL)
		if !ok {
			log.Debug("skipping mdn entry with oversized url", "title", e.Title, "url", e.URL)
			continue
		}
		s.entries = append(s.entries, e)
		s.lower = append(s.lower, strings.ToLower(e.Title))
		s.values = append(s.values, v)
	}
	idx.current.Store(s)
	log.Debugf("mdn index holds %d of %d entries", len(s.entries), len(entries))
}

// choiceValue returns u, or its path when u is too long to be a choice value.
// A cut URL would point somewhere else, so it reports false rather than truncating.
func choiceValue(u string) (string, bool) {
	if utf8.RuneCountInString(u) <= backend.MaxChoiceLength {
		return u, true
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	parsed.Scheme, parsed.Host, parsed.User = "", "", nil
	rel := parsed.String()
	if rel == "" || utf8.RuneCountInString(rel) > backend.MaxChoiceLength {
		return "", false
	}
	return rel, true
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.current.Load().entries)
}

// Resolve returns entries whose title contains q.Text, case-insensitively.
// Titles starting with the text come first; index order is kept otherwise.
// Choice values are the page URLs, made site-relative when the full URL is too long.
func (idx *Index) Resolve(_ context.Context, q backend.Query) ([]backend.Choice, error) {
	s := idx.current.Load()
	query := strings.ToLower(strings.TrimSpace(q.Text))

	var prefix, contains []backend.Choice
	for i, title := range s.lower {
		if idx.limit > 0 && len(prefix) >= idx.limit {
			break
		}
		switch {
		case strings.HasPrefix(title, query):
			prefix = append(prefix, backend.NewChoice(s.entries[i].Title, s.values[i]))
		case strings.Contains(title, query):
			contains = append(contains, backend.NewChoice(s.entries[i].Title, s.values[i]))
		}
	}

	out := append(prefix, contains...)
	if idx.limit > 0 && len(out) > idx.limit {
		out = out[:idx.limit]
	}
	return out, nil
}
