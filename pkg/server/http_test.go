package server

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bastiangx/docserve/pkg/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.Handler, in *interaction.Interaction, sign func(*http.Request, []byte)) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(in)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	if sign != nil {
		sign(req, body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestHTTPServer(t *testing.T, publicKeyHex string, timeout time.Duration) http.Handler {
	t.Helper()
	s, err := NewHTTPServer(testDispatcher(t), publicKeyHex, timeout)
	require.NoError(t, err)
	return s.Handler()
}

func TestHTTPHealth(t *testing.T) {
	h := newTestHTTPServer(t, "", time.Second)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHTTPPing(t *testing.T) {
	h := newTestHTTPServer(t, "", time.Second)
	rec := post(t, h, &interaction.Interaction{Type: interaction.TypePing}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":1}`, rec.Body.String())
}

func TestHTTPAutocomplete(t *testing.T) {
	h := newTestHTTPServer(t, "", time.Second)

	rec := post(t, h, autocompleteInteraction("tag", "fa"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"type":8,"data":{"choices":[{"name":"faq","value":"faq"}]}}`, rec.Body.String())

	rec = post(t, h, autocompleteInteraction("dtypes", ""), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":8,"data":{"choices":[]}}`, rec.Body.String())
}

func TestHTTPStatusCodes(t *testing.T) {
	h := newTestHTTPServer(t, "", 20*time.Millisecond)

	testCases := []struct {
		name string
		in   *interaction.Interaction
		code int
	}{
		{"unknown command", autocompleteInteraction("nope", "x"), http.StatusBadRequest},
		{"backend failure", autocompleteInteraction("discorddocs", "x"), http.StatusBadGateway},
		{"backend timeout", autocompleteInteraction("mdn", "x"), http.StatusGatewayTimeout},
		{"application command", &interaction.Interaction{Type: interaction.TypeCommand}, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, post(t, h, tc.in, nil).Code)
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interactions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTPSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h := newTestHTTPServer(t, hex.EncodeToString(pub), time.Second)

	sign := func(req *http.Request, body []byte) {
		ts := "1700000000"
		req.Header.Set("X-Signature-Timestamp", ts)
		req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(ed25519.Sign(priv, append([]byte(ts), body...))))
	}
	tamper := func(req *http.Request, body []byte) {
		sign(req, body)
		req.Header.Set("X-Signature-Timestamp", "1700000001")
	}

	assert.Equal(t, http.StatusOK, post(t, h, &interaction.Interaction{Type: interaction.TypePing}, sign).Code)
	assert.Equal(t, http.StatusOK, post(t, h, autocompleteInteraction("tag", "fa"), sign).Code)
	assert.Equal(t, http.StatusUnauthorized, post(t, h, autocompleteInteraction("tag", "fa"), tamper).Code)
	assert.Equal(t, http.StatusUnauthorized, post(t, h, autocompleteInteraction("tag", "fa"), nil).Code)
}

func TestNewHTTPServerRejectsBadKey(t *testing.T) {
	_, err := NewHTTPServer(testDispatcher(t), "not-hex", time.Second)
	assert.Error(t, err)
	_, err = NewHTTPServer(testDispatcher(t), "abcd", time.Second)
	assert.Error(t, err)
}
