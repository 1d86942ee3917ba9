package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/backend/algolia"
	"github.com/bastiangx/docserve/pkg/config"
	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	writeData(t, dir, "tags.toml", "[faq]\ncontent = \"Read the FAQ.\"\n\n[intents]\nkeywords = [\"gateway\"]\ncontent = \"Enable intents.\"\n")
	writeData(t, dir, "mdn.json", `[{"title":"fetch()","url":"/en-US/docs/Web/API/fetch"}]`)
	writeData(t, dir, "v14.json", `{"classes":[{"name":"Client","methods":[{"name":"login"}]}]}`)
	writeData(t, dir, "main.json", `{"classes":[{"name":"Client","methods":[{"name":"login"},{"name":"logout"}]}]}`)

	cfg := config.DefaultConfig()
	cfg.Docs.Sources = map[string]string{"v14": "v14.json", "main": "main.json"}
	return cfg, dir
}

func dispatch(t *testing.T, c *Container, command, query string) ([]backend.Choice, error) {
	t.Helper()
	var got []backend.Choice
	err := c.Dispatcher.Dispatch(context.Background(), autocomplete.ResponderFunc(func(env autocomplete.Envelope) error {
		got = env.Choices
		return nil
	}), &interaction.Interaction{
		Type: interaction.TypeAutocomplete,
		Data: interaction.Data{Name: command, Options: []interaction.Option{
			{Name: "query", Type: interaction.OptionString, Value: query, Focused: true},
		}},
	})
	return got, err
}

func TestBuildWiresBackends(t *testing.T) {
	cfg, dir := testConfig(t)
	c, err := Build(cfg, func(name string) string { return filepath.Join(dir, name) })
	require.NoError(t, err)

	assert.Equal(t, 2, c.Tags.Len())
	assert.Equal(t, 1, c.MDN.Len())

	got, err := dispatch(t, c, "tag", "gate")
	require.NoError(t, err)
	assert.Equal(t, []backend.Choice{{Name: "intents", Value: "intents"}}, got)

	got, err = dispatch(t, c, "mdn", "fetch")
	require.NoError(t, err)
	assert.Equal(t, "/en-US/docs/Web/API/fetch", got[0].Value)

	got, err = dispatch(t, c, "docs", "log")
	require.NoError(t, err)
	assert.Equal(t, []backend.Choice{{Name: "Client#login()", Value: "Client#login"}}, got)

	got, err = dispatch(t, c, "docsdev", "log")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = dispatch(t, c, "guide", "intents")
	assert.ErrorIs(t, err, algolia.ErrMissingCredentials)
}

func TestBuildToleratesMissingData(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Data.TagsFile = "absent.toml"
	c, err := Build(cfg, func(name string) string { return filepath.Join(dir, name) })
	require.NoError(t, err)
	assert.Zero(t, c.Tags.Len())
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Docs.DefaultSource = "v99"
	_, err := Build(cfg, nil)
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	cfg, dir := testConfig(t)
	c, err := Build(cfg, func(name string) string { return filepath.Join(dir, name) })
	require.NoError(t, err)

	writeData(t, dir, "tags.toml", "[ping]\ncontent = \"Pong.\"\n")
	c.Reload()
	assert.Equal(t, 1, c.Tags.Len())

	writeData(t, dir, "tags.toml", "[broken")
	c.Reload()
	assert.Equal(t, 1, c.Tags.Len())
}
