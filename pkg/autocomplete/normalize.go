package autocomplete

import (
	"strings"

	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/interaction"
)

// Settings is the configuration the normalizers read.
// Sources maps custom docs source names to their document location.
type Settings struct {
	Sources       map[string]string
	DefaultSource string
	DevSource     string

	Guide   backend.SearchTarget
	Discord backend.SearchTarget
	DTypes  backend.SearchTarget
}

// normalizer derives a backend query from extracted args.
// skip reports that no backend call is needed and the answer is an empty list.
type normalizer func(args interaction.Args, s *Settings) (q backend.Query, skip bool)

func normalizeDocs(args interaction.Args, s *Settings) (backend.Query, bool) {
	return backend.Query{
		Text:   args.String("query"),
		Source: resolveSource(args, s),
	}, false
}

// resolveSource picks the requested source when it is a known custom source,
// falling back to the default otherwise.
func resolveSource(args interaction.Args, s *Settings) string {
	if src, ok := args.Lookup("source"); ok {
		if _, known := s.Sources[src]; known {
			return src
		}
	}
	return s.DefaultSource
}

func normalizeDocsDev(args interaction.Args, s *Settings) (backend.Query, bool) {
	return backend.Query{Text: args.String("query"), Source: s.DevSource}, false
}

func normalizeText(args interaction.Args, _ *Settings) (backend.Query, bool) {
	return backend.Query{Text: args.String("query")}, false
}

func normalizeGuide(args interaction.Args, s *Settings) (backend.Query, bool) {
	return backend.Query{Text: args.String("query"), Target: s.Guide}, false
}

func normalizeDiscordDocs(args interaction.Args, s *Settings) (backend.Query, bool) {
	return backend.Query{Text: args.String("query"), Target: s.Discord}, false
}

// normalizeDTypes prefixes the query with the selected API version.
// An explicitly empty query short-circuits to an empty answer.
func normalizeDTypes(args interaction.Args, s *Settings) (backend.Query, bool) {
	query, given := args.Lookup("query")
	if given && query == "" {
		return backend.Query{}, true
	}
	return backend.Query{
		Text:   composeVersioned(args, query),
		Target: s.DTypes,
	}, false
}

// composeVersioned trims only the composed string; whitespace inside query is kept.
func composeVersioned(args interaction.Args, query string) string {
	prefix := ""
	if v, ok := args.Lookup("version"); ok && v != NoFilter {
		prefix = v
	}
	return strings.TrimSpace(prefix + " " + query)
}
