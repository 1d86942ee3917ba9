package backend

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type cacheKey struct {
	text   string
	source string
	target SearchTarget
}

type cacheEntry struct {
	choices []Choice
	stored  time.Time
	access  int64
}

// HotCache remembers recent results of a slower resolver. When full it evicts
// the least recently used entry; entries older than ttl are refetched.
// Errors are never cached.
type HotCache struct {
	next       Resolver
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	mu          sync.Mutex
	entries     map[cacheKey]*cacheEntry
	accessCount int64
	hits        int
	misses      int
}

// NewHotCache wraps next. A ttl of zero keeps entries until evicted.
func NewHotCache(next Resolver, maxEntries int, ttl time.Duration) *HotCache {
	return &HotCache{
		next:       next,
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[cacheKey]*cacheEntry, maxEntries),
	}
}

func (hc *HotCache) Resolve(ctx context.Context, q Query) ([]Choice, error) {
	key := cacheKey{text: q.Text, source: q.Source, target: q.Target}

	hc.mu.Lock()
	if e, ok := hc.entries[key]; ok && (hc.ttl <= 0 || hc.now().Sub(e.stored) < hc.ttl) {
		e.access = hc.getNextAccessTime()
		hc.hits++
		out := slices.Clone(e.choices)
		hc.mu.Unlock()
		return out, nil
	}
	hc.misses++
	hc.mu.Unlock()

	choices, err := hc.next.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()
	if _, ok := hc.entries[key]; !ok && len(hc.entries) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.entries[key] = &cacheEntry{
		choices: slices.Clone(choices),
		stored:  hc.now(),
		access:  hc.getNextAccessTime(),
	}
	return choices, nil
}

// Stats reports cache size and hit counts.
func (hc *HotCache) Stats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"entries":    len(hc.entries),
		"maxEntries": hc.maxEntries,
		"hits":       hc.hits,
		"misses":     hc.misses,
	}
}

func (hc *HotCache) getNextAccessTime() int64 {
	hc.accessCount++
	return hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldest *cacheKey
	var oldestTime int64 = math.MaxInt64

	for key, e := range hc.entries {
		if e.access < oldestTime {
			oldestTime = e.access
			k := key
			oldest = &k
		}
	}

	if oldest != nil {
		delete(hc.entries, *oldest)
		log.Debugf("Evicted %q from hot cache", oldest.text)
	}
}
