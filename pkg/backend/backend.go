// Package backend defines the capability every query-resolution service exposes to the dispatcher.
package backend

import (
	"context"
	"errors"

	"github.com/bastiangx/docserve/internal/utils"
)

// ErrNoSource is returned by a docs index asked for a source it does not know.
var ErrNoSource = errors.New("backend: unknown source")

// Kind names a backend family.
type Kind int

const (
	KindSearch Kind = iota + 1
	KindTags
	KindDocs
	KindMDN
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindTags:
		return "tags"
	case KindDocs:
		return "docs"
	case KindMDN:
		return "mdn"
	}
	return "unknown"
}

// Choice is one suggestion: a display name and the value submitted when picked.
type Choice struct {
	Name  string `json:"name" msgpack:"name"`
	Value string `json:"value" msgpack:"value"`
}

// MaxChoiceLength is the platform's limit on a choice name or value, in characters.
const MaxChoiceLength = 100

// NewChoice builds a choice, cutting name and value to MaxChoiceLength.
// Values are cut without a marker since they are submitted back verbatim.
func NewChoice(name, value string) Choice {
	return Choice{
		Name:  utils.Truncate(name, MaxChoiceLength, "…"),
		Value: utils.Truncate(value, MaxChoiceLength, ""),
	}
}

// SearchTarget addresses one index of the hosted search service.
type SearchTarget struct {
	AppID  string
	APIKey string
	Index  string
}

// Query is the normalized input of a backend call.
// Source is read only by docs indexes, Target only by the search backend.
type Query struct {
	Text   string
	Source string
	Target SearchTarget
}

// Resolver turns a query into an ordered list of choices.
// It either returns a (possibly empty) list or an error, never both silently.
type Resolver interface {
	Resolve(ctx context.Context, q Query) ([]Choice, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, q Query) ([]Choice, error)

func (f ResolverFunc) Resolve(ctx context.Context, q Query) ([]Choice, error) {
	return f(ctx, q)
}
