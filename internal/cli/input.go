// Package cli handles cmd line input for debugging autocomplete in real-time
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// ParseLine builds an autocomplete interaction from a debug line:
//
//	<command> [option=value ...] [query text]
//
// Tokens of the form option=value set a declared option of the command
// ("query=" sends a present but empty query). The remaining tokens, joined by
// single spaces, form the query; with none the query option is left out.
func ParseLine(line string) (*interaction.Interaction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty line")
	}
	name := fields[0]

	declared := map[string]bool{}
	if cmd, ok := autocomplete.ParseCommand(name); ok {
		for _, f := range cmd.Schema() {
			declared[f.Name] = true
		}
	}

	var opts []interaction.Option
	var words []string
	explicitQuery := false
	for _, tok := range fields[1:] {
		if key, val, ok := strings.Cut(tok, "="); ok && declared[key] {
			if key == "query" {
				explicitQuery = true
				if val != "" {
					words = append(words, val)
				}
				continue
			}
			opts = append(opts, interaction.Option{Name: key, Type: interaction.OptionString, Value: val})
			continue
		}
		words = append(words, tok)
	}
	if len(words) > 0 || explicitQuery {
		opts = append(opts, interaction.Option{
			Name:    "query",
			Type:    interaction.OptionString,
			Value:   strings.Join(words, " "),
			Focused: true,
		})
	}
	return &interaction.Interaction{
		Type: interaction.TypeAutocomplete,
		Data: interaction.Data{Name: name, Options: opts},
	}, nil
}

// InputHandler reads debug lines and prints the choices each one produces.
type InputHandler struct {
	dispatcher interface {
		Dispatch(ctx context.Context, r autocomplete.Responder, in *interaction.Interaction) error
	}
	out     io.Writer
	timeout time.Duration
}

// NewInputHandler creates a handler printing to out.
func NewInputHandler(d *autocomplete.Dispatcher, out io.Writer, timeout time.Duration) *InputHandler {
	return &InputHandler{dispatcher: d, out: out, timeout: timeout}
}

// Start reads lines from in until EOF or ctx is done.
func (h *InputHandler) Start(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(h.out, "docserve debug CLI")
	fmt.Fprintf(h.out, "commands: %v\n", autocomplete.Commands())
	fmt.Fprintln(h.out, "type <command> [option=value ...] <query> and press Enter (Ctrl+D to exit):")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.HandleLine(ctx, line)
	}
}

// HandleLine dispatches one line and prints the outcome.
func (h *InputHandler) HandleLine(ctx context.Context, line string) {
	in, err := ParseLine(line)
	if err != nil {
		log.Errorf("Parsing %q: %v", line, err)
		return
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	var env *autocomplete.Envelope
	err = h.dispatcher.Dispatch(ctx, autocomplete.ResponderFunc(func(e autocomplete.Envelope) error {
		env = &e
		return nil
	}), in)
	log.Debugf("Took [ %v ] for %q", time.Since(start), line)

	switch {
	case err != nil:
		fmt.Fprintf(h.out, "error: %v\n", err)
	case env == nil:
		fmt.Fprintf(h.out, "no response: unknown command %q\n", in.Data.Name)
	case len(env.Choices) == 0:
		fmt.Fprintln(h.out, "no choices")
	default:
		fmt.Fprintf(h.out, "%d choices:\n", len(env.Choices))
		for i, c := range env.Choices {
			fmt.Fprintf(h.out, "%2d. %s  %s\n", i+1, nameStyle.Render(c.Name), valueStyle.Render(c.Value))
		}
	}
}
