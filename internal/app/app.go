// Package app assembles the backends and dispatcher from a loaded config.
package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/backend/algolia"
	"github.com/bastiangx/docserve/pkg/backend/docs"
	"github.com/bastiangx/docserve/pkg/backend/mdn"
	"github.com/bastiangx/docserve/pkg/backend/tags"
	"github.com/bastiangx/docserve/pkg/config"
	"github.com/charmbracelet/log"
)

// Container holds everything a transport needs.
type Container struct {
	Config     *config.Config
	Dispatcher *autocomplete.Dispatcher
	Tags       *tags.Cache
	Docs       *docs.Index
	MDN        *mdn.Index
	Search     *algolia.Client

	// SearchCache fronts Search; nil when disabled.
	SearchCache *backend.HotCache

	resolve func(string) string
}

// Build validates cfg and wires the backends. resolve maps a configured data
// file name to a path; nil uses names as given.
// Missing tag or MDN files leave their backend empty rather than failing.
func Build(cfg *config.Config, resolve func(string) string) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolve == nil {
		resolve = func(name string) string { return name }
	}
	c := &Container{Config: cfg, resolve: resolve}

	c.Tags = tags.NewCache(nil, cfg.Limits.Suggestions)
	c.MDN = mdn.NewIndex(nil, cfg.Limits.Suggestions)
	c.Reload()

	locations := make(map[string]string, len(cfg.Docs.Sources))
	for name, loc := range cfg.Docs.Sources {
		if !isURL(loc) {
			loc = resolve(loc)
		}
		locations[name] = loc
	}
	c.Docs = docs.NewIndex(locations, docs.DefaultFetcher(&http.Client{Timeout: cfg.DocsFetchTimeout()}), cfg.Limits.Suggestions)

	c.Search = algolia.New(
		&http.Client{Timeout: cfg.RequestTimeout()},
		algolia.WithHitsPerPage(cfg.Limits.SearchHits),
	)

	var search backend.Resolver = c.Search
	if cfg.Limits.SearchCacheSize > 0 {
		c.SearchCache = backend.NewHotCache(c.Search, cfg.Limits.SearchCacheSize, cfg.SearchCacheTTL())
		search = c.SearchCache
	}

	d, err := autocomplete.NewDispatcher(cfg.Settings(), autocomplete.Backends{
		backend.KindTags:   c.Tags,
		backend.KindDocs:   c.Docs,
		backend.KindSearch: search,
		backend.KindMDN:    c.MDN,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	c.Dispatcher = d
	return c, nil
}

// Reload re-reads the tag file and MDN index. A file that fails to load keeps
// the current snapshot.
func (c *Container) Reload() {
	if path := c.resolve(c.Config.Data.TagsFile); path != "" {
		if loaded, err := tags.LoadFile(path); err != nil {
			log.Warnf("Tags not reloaded: %v", err)
		} else {
			c.Tags.Replace(loaded)
			log.Infof("Loaded %d tags from %s", len(loaded), path)
		}
	}
	if path := c.resolve(c.Config.Data.MDNIndex); path != "" {
		if entries, err := mdn.LoadFile(path); err != nil {
			log.Warnf("MDN index not reloaded: %v", err)
		} else {
			c.MDN.Replace(entries)
			log.Infof("Loaded %d MDN entries from %s", len(entries), path)
		}
	}
}

func isURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}
