package server

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bastiangx/docserve/internal/logger"
	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrBadSignature is returned for requests whose signature does not verify.
var ErrBadSignature = errors.New("server: invalid request signature")

const maxBodyBytes = 1 << 20

// HTTPServer answers interactions posted by the platform.
type HTTPServer struct {
	dispatcher Dispatcher
	publicKey  ed25519.PublicKey
	timeout    time.Duration
	log        *log.Logger
	mux        *http.ServeMux
}

// NewHTTPServer creates the HTTP transport. publicKeyHex may be empty to skip
// signature checks, which is only meant for local testing.
func NewHTTPServer(d Dispatcher, publicKeyHex string, timeout time.Duration) (*HTTPServer, error) {
	s := &HTTPServer{
		dispatcher: d,
		timeout:    timeout,
		log:        logger.New("http"),
		mux:        http.NewServeMux(),
	}
	if publicKeyHex != "" {
		key, err := hex.DecodeString(publicKeyHex)
		if err != nil || len(key) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("server: public key must be %d hex-encoded bytes", ed25519.PublicKeySize)
		}
		s.publicKey = key
	} else {
		s.log.Warn("No public key configured, request signatures are not checked")
	}
	s.mux.HandleFunc("POST /interactions", s.handleInteraction)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s, nil
}

// Handler returns the routes.
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleInteraction(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	l := s.log.With("id", id)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}
	if err := s.verify(r.Header, body); err != nil {
		l.Warn("Rejected request", "err", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var in interaction.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "invalid interaction", http.StatusBadRequest)
		return
	}

	switch in.Type {
	case interaction.TypePing:
		writeJSON(w, http.StatusOK, interactionResponse{Type: responsePong})
		return
	case interaction.TypeAutocomplete:
	default:
		http.Error(w, fmt.Sprintf("unsupported interaction type %d", in.Type), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	responded := false
	responder := autocomplete.Once(autocomplete.ResponderFunc(func(env autocomplete.Envelope) error {
		responded = true
		return writeJSON(w, http.StatusOK, interactionResponse{Type: responseAutocompleteResponse, Data: &env})
	}))

	err = s.dispatcher.Dispatch(ctx, responder, &in)
	switch {
	case responded:
		if err != nil {
			l.Error("Writing response", "err", err)
			return
		}
		l.Debug("Completed", "command", in.Data.Name, "took", time.Since(start))
	case err != nil:
		code := statusFor(err)
		l.Warn("Autocomplete failed", "command", in.Data.Name, "code", code, "err", err)
		http.Error(w, http.StatusText(code), code)
	default:
		http.Error(w, fmt.Sprintf("unknown command %q", in.Data.Name), http.StatusBadRequest)
	}
}

// verify checks the request signature over timestamp+body.
func (s *HTTPServer) verify(h http.Header, body []byte) error {
	if s.publicKey == nil {
		return nil
	}
	sig, err := hex.DecodeString(h.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrBadSignature
	}
	timestamp := h.Get("X-Signature-Timestamp")
	if timestamp == "" {
		return ErrBadSignature
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	if !ed25519.Verify(s.publicKey, msg, sig) {
		return ErrBadSignature
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
