/*
Package server exposes the autocomplete dispatcher over two transports.

# HTTP

The HTTP transport receives interactions from the platform:

	POST /interactions   signed interaction JSON, answered with {"type": 8, "data": {"choices": [...]}}
	GET  /health         {"status": "ok"}

When a public key is configured, X-Signature-Ed25519 and X-Signature-Timestamp are checked
before the body is decoded. PING interactions are answered with {"type": 1}.
Unknown commands get 400, failed backends 502 and timed out ones 504.

# IPC

The IPC transport reads msgpack requests from stdin and writes msgpack frames to stdout,
one frame per request, in request order:

	{"id": "req_001", "interaction": {"type": 4, "data": {"name": "tag", "options": [...]}}}

A completed request is answered with its choices and the time taken in milliseconds:

	{"id": "req_001", "choices": [{"name": "faq", "value": "faq"}], "c": 1, "t": 3}

and a failed one with an error frame carrying an HTTP-like status code:

	{"id": "req_001", "e": "unknown command \"nope\"", "c": 404}

A {"status": "ready"} frame is written before the first request is read.
*/
package server

import (
	"context"

	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/bastiangx/docserve/pkg/interaction"
)

// Dispatcher answers one interaction through a responder.
type Dispatcher interface {
	Dispatch(ctx context.Context, r autocomplete.Responder, in *interaction.Interaction) error
}

// Request - IPC completion request
type Request struct {
	ID          string                   `msgpack:"id"`
	Interaction *interaction.Interaction `msgpack:"interaction"`
}

// CompletionResponse - IPC completion response
type CompletionResponse struct {
	ID        string           `msgpack:"id"`
	Choices   []backend.Choice `msgpack:"choices"`
	Count     int              `msgpack:"c"`
	TimeTaken int64            `msgpack:"t"`
}

// CompletionError holds basic error information for completion requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// StatusFrame reports transport state: "ready" on start, "pong" for PING.
type StatusFrame struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// interactionResponse is the HTTP reply body.
type interactionResponse struct {
	Type int                    `json:"type"`
	Data *autocomplete.Envelope `json:"data,omitempty"`
}

// Interaction response types.
const (
	responsePong                 = 1
	responseAutocompleteResponse = 8
)
