// Package algolia resolves autocomplete queries against a hosted Algolia search index.
package algolia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/charmbracelet/log"
)

// DefaultHitsPerPage matches the platform's choice limit.
const DefaultHitsPerPage = 25

// ErrMissingCredentials is returned when a target has no app id or key.
var ErrMissingCredentials = errors.New("algolia: missing application id or api key")

// Hierarchy is the DocSearch heading path of a hit.
type Hierarchy struct {
	Lvl0 string `json:"lvl0"`
	Lvl1 string `json:"lvl1"`
	Lvl2 string `json:"lvl2"`
	Lvl3 string `json:"lvl3"`
	Lvl4 string `json:"lvl4"`
	Lvl5 string `json:"lvl5"`
	Lvl6 string `json:"lvl6"`
}

func (h Hierarchy) levels() []string {
	return []string{h.Lvl0, h.Lvl1, h.Lvl2, h.Lvl3, h.Lvl4, h.Lvl5, h.Lvl6}
}

// Hit is one search result.
type Hit struct {
	ObjectID  string    `json:"objectID"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Hierarchy Hierarchy `json:"hierarchy"`
}

type queryResponse struct {
	Hits []Hit `json:"hits"`
}

type queryRequest struct {
	Params string `json:"params"`
}

// Client queries one Algolia index per call; the target is part of the query.
type Client struct {
	httpClient  *http.Client
	endpoint    func(appID, index string) string
	hitsPerPage int
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides how the query URL is built, mainly for tests.
func WithEndpoint(fn func(appID, index string) string) Option {
	return func(c *Client) { c.endpoint = fn }
}

// WithHitsPerPage sets how many hits are requested.
func WithHitsPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.hitsPerPage = n
		}
	}
}

// New creates a client. A nil httpClient gets one with a 2s timeout.
func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Second}
	}
	c := &Client{
		httpClient:  httpClient,
		endpoint:    defaultEndpoint,
		hitsPerPage: DefaultHitsPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultEndpoint(appID, index string) string {
	return fmt.Sprintf("https://%s-dsn.algolia.net/1/indexes/%s/query", appID, url.PathEscape(index))
}

// Resolve runs q.Text against q.Target and maps hits to choices in ranking order.
func (c *Client) Resolve(ctx context.Context, q backend.Query) ([]backend.Choice, error) {
	hits, err := c.Search(ctx, q.Target, q.Text)
	if err != nil {
		return nil, err
	}
	choices := make([]backend.Choice, 0, len(hits))
	for _, h := range hits {
		if h.ObjectID == "" {
			continue
		}
		choices = append(choices, backend.NewChoice(HitName(h), h.ObjectID))
	}
	return choices, nil
}

// Search posts one query and returns the raw hits.
func (c *Client) Search(ctx context.Context, target backend.SearchTarget, text string) ([]Hit, error) {
	if target.AppID == "" || target.APIKey == "" {
		return nil, fmt.Errorf("%w (index %q)", ErrMissingCredentials, target.Index)
	}

	params := url.Values{}
	params.Set("query", text)
	params.Set("hitsPerPage", fmt.Sprint(c.hitsPerPage))
	body, err := json.Marshal(queryRequest{Params: params.Encode()})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(target.AppID, target.Index), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Algolia-Application-Id", target.AppID)
	req.Header.Set("X-Algolia-API-Key", target.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("algolia %s: %w", target.Index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("algolia %s: %s: %s", target.Index, resp.Status, strings.TrimSpace(string(msg)))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("algolia %s: decoding response: %w", target.Index, err)
	}
	log.Debugf("algolia %s: %d hits for %q in %v", target.Index, len(out.Hits), text, time.Since(start))
	return out.Hits, nil
}

// HitName renders a hit's heading path as "lvl0 - lvl1 - ...", falling back to its content.
func HitName(h Hit) string {
	var parts []string
	for _, lvl := range h.Hierarchy.levels() {
		if lvl = strings.TrimSpace(lvl); lvl != "" {
			parts = append(parts, lvl)
		}
	}
	name := strings.Join(parts, " - ")
	if name == "" {
		name = h.Content
	}
	if name == "" {
		name = h.ObjectID
	}
	return html.UnescapeString(name)
}
