package autocomplete

import (
	"errors"
	"sync"

	"github.com/bastiangx/docserve/pkg/backend"
)

// MaxChoices is the platform's upper bound on choices per response.
const MaxChoices = 25

// ErrAlreadyResponded is returned when a response is completed twice.
var ErrAlreadyResponded = errors.New("autocomplete: response already completed")

// Envelope is the wire body of an autocomplete response.
type Envelope struct {
	Choices []backend.Choice `json:"choices" msgpack:"choices"`
}

// Responder completes one request's response.
type Responder interface {
	Respond(env Envelope) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(env Envelope) error

func (f ResponderFunc) Respond(env Envelope) error {
	return f(env)
}

// Emit writes choices to r, keeping at most MaxChoices in their original order.
// It must be called at most once per response.
func Emit(r Responder, choices []backend.Choice) error {
	if len(choices) > MaxChoices {
		choices = choices[:MaxChoices]
	}
	if choices == nil {
		choices = []backend.Choice{}
	}
	return r.Respond(Envelope{Choices: choices})
}

type onceResponder struct {
	mu   sync.Mutex
	done bool
	r    Responder
}

// Once guards r so that only the first completion reaches it.
// Later calls return ErrAlreadyResponded.
func Once(r Responder) Responder {
	return &onceResponder{r: r}
}

func (o *onceResponder) Respond(env Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return ErrAlreadyResponded
	}
	o.done = true
	return o.r.Respond(env)
}
