package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		line string
		want []interaction.Option
	}{
		{"tag", nil},
		{"tag faq", []interaction.Option{{Name: "query", Type: interaction.OptionString, Value: "faq", Focused: true}}},
		{"mdn  Array  map ", []interaction.Option{{Name: "query", Type: interaction.OptionString, Value: "Array map", Focused: true}}},
		{"dtypes query=", []interaction.Option{{Name: "query", Type: interaction.OptionString, Value: "", Focused: true}}},
		{"dtypes version=v10 Client", []interaction.Option{
			{Name: "version", Type: interaction.OptionString, Value: "v10"},
			{Name: "query", Type: interaction.OptionString, Value: "Client", Focused: true},
		}},
		{"tag version=v10", []interaction.Option{{Name: "query", Type: interaction.OptionString, Value: "version=v10", Focused: true}}},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			in, err := ParseLine(tc.line)
			require.NoError(t, err)
			assert.Equal(t, interaction.TypeAutocomplete, in.Type)
			assert.Equal(t, strings.Fields(tc.line)[0], in.Data.Name)
			assert.Equal(t, tc.want, in.Data.Options)
		})
	}

	_, err := ParseLine("   ")
	assert.Error(t, err)
}

func newHandler(t *testing.T, out *bytes.Buffer) *InputHandler {
	t.Helper()
	echo := backend.ResolverFunc(func(_ context.Context, q backend.Query) ([]backend.Choice, error) {
		return []backend.Choice{{Name: "echo " + q.Text, Value: q.Source}}, nil
	})
	d, err := autocomplete.NewDispatcher(
		autocomplete.Settings{Sources: map[string]string{"v14": ""}, DefaultSource: "v14", DevSource: "main"},
		autocomplete.Backends{
			backend.KindTags: echo,
			backend.KindDocs: echo,
			backend.KindMDN:  echo,
			backend.KindSearch: backend.ResolverFunc(func(context.Context, backend.Query) ([]backend.Choice, error) {
				return nil, errors.New("offline")
			}),
		},
	)
	require.NoError(t, err)
	return NewInputHandler(d, out, time.Second)
}

func TestHandleLine(t *testing.T) {
	testCases := []struct {
		line string
		want string
	}{
		{"tag faq", "echo faq"},
		{"docsdev Client", "main"},
		{"guide intents", "error:"},
		{"dtypes query=", "no choices"},
		{"nope x", "unknown command"},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			var out bytes.Buffer
			newHandler(t, &out).HandleLine(context.Background(), tc.line)
			assert.Contains(t, out.String(), tc.want)
		})
	}
}

func TestStartReadsUntilEOF(t *testing.T) {
	var out bytes.Buffer
	err := newHandler(t, &out).Start(context.Background(), strings.NewReader("tag faq\n\nmdn fetch\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "echo faq")
	assert.Contains(t, out.String(), "echo fetch")
}
