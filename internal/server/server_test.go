package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/star-coach/internal/config"
	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/llm/llmtest"
	"github.com/jonathan/star-coach/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = &config.TokenConfig{Secret: "test-secret", TTL: time.Hour}

func newTestServer(t *testing.T, client *llmtest.MockClient, opts ...func(*Deps)) *Server {
	t.Helper()
	if client == nil {
		client = &llmtest.MockClient{}
	}

	store, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	deps := Deps{
		LLM:       client,
		Store:     store,
		Tokens:    testTokens,
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return NewWithDeps(Config{}, deps)
}

// do sends a request through the full middleware chain. body is encoded as
// JSON unless it is already a string.
func do(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodOptions, "/api/sessions/123", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/api/coach", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, &llmtest.MockClient{}, func(d *Deps) {
		d.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  100,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/api/extract", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1},
			},
		}
	})

	body := map[string]any{
		"workflow": "star",
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	}

	first := do(t, s, http.MethodPost, "/api/extract", body, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do(t, s, http.MethodPost, "/api/extract", body, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, second)["error"])

	// health is never limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil, "").Code)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	s, err := New(context.Background(), Config{})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPruneSnapshots(t *testing.T) {
	s := newTestServer(t, nil)
	s.snapshotTTL = time.Nanosecond
	s.pruneEvery = 10 * time.Millisecond

	snap := &db.Snapshot{Kind: db.KindTicket}
	require.NoError(t, s.store.SaveSnapshot(context.Background(), snap))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.pruneSnapshots(ctx) }()

	require.Eventually(t, func() bool {
		got, err := s.store.GetSnapshot(context.Background(), snap.ID)
		return err == nil && got == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
