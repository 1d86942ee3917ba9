package tags

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTags = []Tag{
	{Name: "faq", Keywords: []string{"questions"}, Content: "Read the FAQ."},
	{Name: "fail", Keywords: []string{"error"}, Content: "It failed."},
	{Name: "intents", Keywords: []string{"gateway", "faq-intents"}, Content: "Enable intents."},
	{Name: "ping", Content: "Pong."},
	{Name: "voice-setup", Keywords: []string{"audio"}, Content: "Install voice deps."},
}

func resolveNames(t *testing.T, c *Cache, text string) []string {
	t.Helper()
	choices, err := c.Resolve(context.Background(), backend.Query{Text: text})
	require.NoError(t, err)
	var out []string
	for _, ch := range choices {
		assert.Equal(t, ch.Name, ch.Value)
		out = append(out, ch.Name)
	}
	return out
}

func TestResolveOrdering(t *testing.T) {
	c := NewCache(testTags, 25)

	testCases := []struct {
		query    string
		expected []string
	}{
		{"faq", []string{"faq", "intents"}},
		{"fa", []string{"fail", "faq", "intents"}},
		{"gate", []string{"intents"}},
		{"setup", []string{"voice-setup"}},
		{"FAQ", []string{"faq", "intents"}},
		{"zzz", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.expected, resolveNames(t, c, tc.query))
		})
	}
}

func TestResolveKeepsNamesDifferingInCase(t *testing.T) {
	c := NewCache([]Tag{{Name: "faq"}, {Name: "FAQ"}, {Name: "fail"}}, 25)

	assert.Equal(t, []string{"FAQ", "faq"}, resolveNames(t, c, "faq"))
	assert.Equal(t, []string{"FAQ", "fail", "faq"}, resolveNames(t, c, "fa"))

	upper, ok := c.Get("FAQ")
	require.True(t, ok)
	assert.Equal(t, "FAQ", upper.Name)
}

func TestResolveEmptyListsByName(t *testing.T) {
	c := NewCache(testTags, 3)
	assert.Equal(t, []string{"fail", "faq", "intents"}, resolveNames(t, c, ""))
}

func TestReplaceSwapsSnapshot(t *testing.T) {
	c := NewCache(testTags, 25)
	require.Equal(t, 5, c.Len())

	c.Replace([]Tag{{Name: "new"}})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"new"}, resolveNames(t, c, "n"))
	_, ok := c.Get("faq")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[faq]
keywords = ["questions"]
content = "Read the FAQ."

[ping]
content = "Pong."
`), 0o644))

	tags, err := LoadFile(path)
	require.NoError(t, err)
	c := NewCache(tags, 25)

	faq, ok := c.Get("faq")
	require.True(t, ok)
	assert.Equal(t, []string{"questions"}, faq.Keywords)
	assert.Equal(t, []string{"faq"}, resolveNames(t, c, "quest"))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
