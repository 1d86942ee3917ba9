/*
Package autocomplete routes autocomplete interactions to the backend that can answer them.

A Dispatcher holds one route per Command. Each route names the backend kind it
calls and the normalizer that turns the command's extracted options into that
backend's query:

	docs, docsdev         -> docs index   (query, custom source)
	tag                   -> tag cache    (query)
	guide, discorddocs    -> search index (query, per-index credentials)
	mdn                   -> mdn index    (query)
	dtypes                -> search index ("<version> <query>", short-circuits on "")

Dispatch performs at most one backend call per interaction and completes the
response exactly once. Unknown command names are a no-op and leave the response
untouched. Backend failures are returned to the caller and never masked as an
empty answer.

Usage:

	d, err := autocomplete.NewDispatcher(settings, autocomplete.Backends{
		backend.KindSearch: algoliaClient,
		backend.KindTags:   tagCache,
		backend.KindDocs:   docsIndex,
		backend.KindMDN:    mdnIndex,
	})
	err = d.Dispatch(ctx, autocomplete.Once(responder), in)
*/
package autocomplete

import (
	"context"
	"fmt"

	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/charmbracelet/log"
)

// Backends holds one resolver per backend kind.
type Backends map[backend.Kind]backend.Resolver

type route struct {
	kind      backend.Kind
	normalize normalizer
}

var routes = map[Command]route{
	CommandDocs:        {backend.KindDocs, normalizeDocs},
	CommandDocsDev:     {backend.KindDocs, normalizeDocsDev},
	CommandTag:         {backend.KindTags, normalizeText},
	CommandGuide:       {backend.KindSearch, normalizeGuide},
	CommandDiscordDocs: {backend.KindSearch, normalizeDiscordDocs},
	CommandMDN:         {backend.KindMDN, normalizeText},
	CommandDTypes:      {backend.KindSearch, normalizeDTypes},
}

// Dispatcher selects and drives the extract, normalize, resolve and emit steps for one interaction.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	settings Settings
	backends Backends
}

// NewDispatcher checks that every command has a route and every routed backend is present.
func NewDispatcher(settings Settings, backends Backends) (*Dispatcher, error) {
	for _, c := range commands {
		rt, ok := routes[c]
		if !ok {
			return nil, fmt.Errorf("autocomplete: no route for command %q", c)
		}
		if backends[rt.kind] == nil {
			return nil, fmt.Errorf("autocomplete: command %q needs a %s backend", c, rt.kind)
		}
	}
	if settings.DefaultSource == "" {
		return nil, fmt.Errorf("autocomplete: default docs source is not set")
	}
	return &Dispatcher{settings: settings, backends: backends}, nil
}

// Dispatch answers in through r.
// Unknown commands return nil without writing. Backend errors are returned
// without writing, and so is a context that ended while the backend ran.
func (d *Dispatcher) Dispatch(ctx context.Context, r Responder, in *interaction.Interaction) error {
	cmd, ok := ParseCommand(in.Data.Name)
	if !ok {
		log.Debug("ignoring autocomplete for unknown command", "command", in.Data.Name)
		return nil
	}
	rt := routes[cmd]

	args := interaction.Extract(in.Data.Options, cmd.Schema())
	q, skip := rt.normalize(args, &d.settings)
	if skip {
		log.Debug("empty query, skipping backend", "command", cmd)
		return Emit(r, nil)
	}

	choices, err := d.backends[rt.kind].Resolve(ctx, q)
	if err != nil {
		return fmt.Errorf("autocomplete %s: %s backend: %w", cmd, rt.kind, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Debug("resolved", "command", cmd, "backend", rt.kind, "query", q.Text, "choices", len(choices))
	return Emit(r, choices)
}
