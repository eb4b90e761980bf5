package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSession(t *testing.T, s *Server, payload string) types.SessionCreated {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/sessions", types.SnapshotRequest{
		Kind:    "interview",
		Payload: json.RawMessage(payload),
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[types.SessionCreated](t, w)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.NotEmpty(t, created.Token)
	return created
}

func TestSessions_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	created := createSession(t, s, `{"sessionPhase":"input"}`)
	path := "/api/sessions/" + created.ID.String()

	w := do(t, s, http.MethodGet, path, nil, created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.SnapshotResponse](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "interview", got.Kind)
	assert.JSONEq(t, `{"sessionPhase":"input"}`, string(got.Payload))

	w = do(t, s, http.MethodPut, path, types.SnapshotRequest{
		Kind:    "interview",
		Payload: json.RawMessage(`{"sessionPhase":"review"}`),
	}, created.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, path, nil, created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessionPhase":"review"}`, string(decodeBody[types.SnapshotResponse](t, w).Payload))

	w = do(t, s, http.MethodDelete, path, nil, created.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, path, nil, created.Token).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, path, nil, created.Token).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, path, types.SnapshotRequest{
		Kind:    "interview",
		Payload: json.RawMessage(`{}`),
	}, created.Token).Code)
}

func TestSessions_RequireMatchingToken(t *testing.T) {
	s := newTestServer(t, nil)
	first := createSession(t, s, `{}`)
	second := createSession(t, s, `{}`)
	path := "/api/sessions/" + first.ID.String()

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, path, nil, "garbage").Code)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, path, nil, second.Token).Code)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodDelete, path, nil, second.Token).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, path, nil, first.Token).Code)
}

func TestSessions_CreateValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{name: "not json", body: "{"},
		{name: "unknown kind", body: map[string]any{"kind": "essay", "payload": map[string]any{}}},
		{name: "missing payload", body: map[string]any{"kind": "ticket"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/sessions", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
