// Package middleware provides HTTP middleware for session-token authorization.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// sessionIDKey is the context key for the authorized session ID.
const sessionIDKey ContextKey = "sessionID"

// TokenValidator validates a bearer token. The server's JWT service
// implements it.
type TokenValidator interface {
	ValidateToken(tokenString string) (SessionClaims, error)
}

// SessionClaims exposes the session a token was issued for.
type SessionClaims interface {
	GetSessionID() uuid.UUID
}

// RequireSession rejects requests without a valid bearer token. When the
// route has an {id} path value, the token must have been issued for that
// session. The session ID is stored in the request context.
func RequireSession(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			sessionID := claims.GetSessionID()

			if raw := r.PathValue("id"); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil || id != sessionID {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from a case-insensitive "Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// SessionID returns the authorized session ID from the request context.
func SessionID(r *http.Request) (uuid.UUID, error) {
	id, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("session ID not found in request context")
	}
	return id, nil
}
