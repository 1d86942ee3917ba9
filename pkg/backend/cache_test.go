package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls map[string]int
	fail  bool
}

func (c *countingResolver) Resolve(_ context.Context, q Query) ([]Choice, error) {
	c.calls[q.Text]++
	if c.fail {
		return nil, errors.New("unavailable")
	}
	return []Choice{{Name: q.Text, Value: q.Target.Index}}, nil
}

func TestHotCacheHitsAndEvicts(t *testing.T) {
	next := &countingResolver{calls: map[string]int{}}
	hc := NewHotCache(next, 2, 0)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "a", "c", "a", "b"} {
		got, err := hc.Resolve(ctx, Query{Text: text, Target: SearchTarget{Index: "discord"}})
		require.NoError(t, err)
		assert.Equal(t, []Choice{{Name: text, Value: "discord"}}, got)
	}

	// c evicted b, so b was fetched twice; a stayed hot.
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 1}, next.calls)
	stats := hc.Stats()
	assert.Equal(t, 2, stats["entries"])
	assert.Equal(t, 2, stats["hits"])
	assert.Equal(t, 4, stats["misses"])
}

func TestHotCacheKeysByTarget(t *testing.T) {
	next := &countingResolver{calls: map[string]int{}}
	hc := NewHotCache(next, 8, 0)

	_, err := hc.Resolve(context.Background(), Query{Text: "x", Target: SearchTarget{Index: "discordjs"}})
	require.NoError(t, err)
	got, err := hc.Resolve(context.Background(), Query{Text: "x", Target: SearchTarget{Index: "discord"}})
	require.NoError(t, err)
	assert.Equal(t, "discord", got[0].Value)
	assert.Equal(t, 2, next.calls["x"])
}

func TestHotCacheExpires(t *testing.T) {
	next := &countingResolver{calls: map[string]int{}}
	hc := NewHotCache(next, 8, time.Minute)
	now := time.Unix(1700000000, 0)
	hc.now = func() time.Time { return now }

	_, _ = hc.Resolve(context.Background(), Query{Text: "x"})
	now = now.Add(30 * time.Second)
	_, _ = hc.Resolve(context.Background(), Query{Text: "x"})
	assert.Equal(t, 1, next.calls["x"])

	now = now.Add(time.Minute)
	_, _ = hc.Resolve(context.Background(), Query{Text: "x"})
	assert.Equal(t, 2, next.calls["x"])
}

func TestHotCacheSkipsErrors(t *testing.T) {
	next := &countingResolver{calls: map[string]int{}, fail: true}
	hc := NewHotCache(next, 8, 0)

	for range 2 {
		_, err := hc.Resolve(context.Background(), Query{Text: "x"})
		assert.Error(t, err)
	}
	assert.Equal(t, 2, next.calls["x"])
	assert.Zero(t, hc.Stats()["entries"])
}
