package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]uuid.UUID)}
}

func (v *testTokenValidator) addValidToken(token string, sessionID uuid.UUID) {
	v.validTokens[token] = sessionID
}

func (v *testTokenValidator) ValidateToken(tokenString string) (SessionClaims, error) {
	sessionID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(sessionID), nil
}

type testClaims uuid.UUID

func (c testClaims) GetSessionID() uuid.UUID {
	return uuid.UUID(c)
}

func serve(t *testing.T, v TokenValidator, authHeader, pathID string) (*httptest.ResponseRecorder, bool, uuid.UUID) {
	t.Helper()

	called := false
	var got uuid.UUID
	handler := RequireSession(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := SessionID(r)
		require.NoError(t, err)
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, called, got
}

func TestRequireSession_ValidToken(t *testing.T) {
	v := newTestTokenValidator()
	sessionID := uuid.New()
	v.addValidToken("valid-token", sessionID)

	w, called, got := serve(t, v, "Bearer valid-token", sessionID.String())

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sessionID, got)
}

func TestRequireSession_NoPathValue(t *testing.T) {
	v := newTestTokenValidator()
	sessionID := uuid.New()
	v.addValidToken("valid-token", sessionID)

	w, called, got := serve(t, v, "bearer valid-token", "")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sessionID, got)
}

func TestRequireSession_Unauthorized(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("valid-token", uuid.New())

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "missing Bearer prefix", authHeader: "valid-token"},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "too many parts", authHeader: "Bearer valid-token extra"},
		{name: "basic scheme", authHeader: "Basic valid-token"},
		{name: "unknown token", authHeader: "Bearer not.a.valid.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called, _ := serve(t, v, tt.authHeader, "")

			assert.False(t, called, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
		})
	}
}

func TestRequireSession_WrongSession(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("valid-token", uuid.New())

	for _, pathID := range []string{uuid.NewString(), "not-a-uuid"} {
		w, called, _ := serve(t, v, "Bearer valid-token", pathID)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, w.Code)
	}
}

func TestSessionID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	id, err := SessionID(req)
	assert.ErrorContains(t, err, "session ID not found")
	assert.Equal(t, uuid.Nil, id)
}

func TestSessionID_InvalidType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), sessionIDKey, "not-a-uuid"))

	id, err := SessionID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
}
