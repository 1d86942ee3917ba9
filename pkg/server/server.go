package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bastiangx/docserve/internal/logger"
	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles msgpack IPC for autocomplete requests
type Server struct {
	dispatcher Dispatcher
	timeout    time.Duration
	dec        *msgpack.Decoder
	enc        *msgpack.Encoder
	log        *log.Logger
}

// NewServer creates an IPC server reading requests from r and writing frames to w.
// Each request gets timeout to finish; zero means no deadline.
func NewServer(d Dispatcher, r io.Reader, w io.Writer, timeout time.Duration) *Server {
	return &Server{
		dispatcher: d,
		timeout:    timeout,
		dec:        msgpack.NewDecoder(r),
		enc:        msgpack.NewEncoder(w),
		log:        logger.New("ipc"),
	}
}

// Start writes the ready frame and serves requests until the input ends or ctx is done.
// A frame that does not decode ends the stream, since msgpack cannot resynchronize.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")
	if err := s.send(StatusFrame{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			_ = s.sendError("", "invalid msgpack request", http.StatusBadRequest)
			return fmt.Errorf("ipc: decoding request: %w", err)
		}
		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest answers one request. Only write failures are returned.
func (s *Server) handleRequest(ctx context.Context, req Request) error {
	in := req.Interaction
	if in == nil {
		return s.sendError(req.ID, "missing interaction", http.StatusBadRequest)
	}
	switch in.Type {
	case interaction.TypePing:
		return s.send(StatusFrame{ID: req.ID, Status: "pong"})
	case interaction.TypeAutocomplete:
	default:
		return s.sendError(req.ID, fmt.Sprintf("unsupported interaction type %d", in.Type), http.StatusBadRequest)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var writeErr error
	responded := false
	r := autocomplete.Once(autocomplete.ResponderFunc(func(env autocomplete.Envelope) error {
		responded = true
		writeErr = s.send(CompletionResponse{
			ID:        req.ID,
			Choices:   env.Choices,
			Count:     len(env.Choices),
			TimeTaken: time.Since(start).Milliseconds(),
		})
		return writeErr
	}))

	err := s.dispatcher.Dispatch(ctx, r, in)
	switch {
	case writeErr != nil:
		return writeErr
	case err != nil:
		code := statusFor(err)
		s.log.Warn("autocomplete failed", "id", req.ID, "command", in.Data.Name, "code", code, "err", err)
		return s.sendError(req.ID, err.Error(), code)
	case !responded:
		return s.sendError(req.ID, fmt.Sprintf("unknown command %q", in.Data.Name), http.StatusNotFound)
	}
	s.log.Debug("completed", "id", req.ID, "command", in.Data.Name, "took", time.Since(start))
	return nil
}

func (s *Server) send(frame any) error {
	if err := s.enc.Encode(frame); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("ipc: writing frame: %w", err)
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(CompletionError{ID: id, Error: message, Code: code})
}

// statusFor maps a dispatch error to a status code.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
