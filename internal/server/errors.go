// Package server provides the HTTP proxy in front of the model: streaming
// coaching chat, extraction, job analysis and session snapshots.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/fetch"
	"github.com/jonathan/star-coach/internal/ingestion"
	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/parsing"
)

// ErrMissingAPIKey is returned by New when no model credential is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSessionNotFound indicates the snapshot slot does not exist
type ErrSessionNotFound struct {
	ID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrUpstream indicates the model provider failed before anything was streamed
type ErrUpstream struct {
	Message string
	Cause   error
}

func (e *ErrUpstream) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ErrUpstream) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *ErrSessionNotFound
		upstream   *ErrUpstream
		parseInput *parsing.ValidationError
		modelCall  *parsing.APICallError
		fetchErr   *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &parseInput), errors.Is(err, llm.ErrInvalidConversation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, ingestion.ErrContentExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstream), errors.As(err, &modelCall), errors.As(err, &fetchErr),
		errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
