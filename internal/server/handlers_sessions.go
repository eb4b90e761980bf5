package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/server/middleware"
	"github.com/jonathan/star-coach/internal/types"
	"go.uber.org/zap"
)

// handleCreateSession stores a first snapshot and returns its ID with a
// token for later access.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.SnapshotRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := &db.Snapshot{Kind: req.Kind, Payload: req.Payload}
	if err := s.store.SaveSnapshot(r.Context(), snap); err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	token, err := s.tokens.GenerateToken(snap.ID)
	if err != nil {
		s.logger.Error("failed to issue session token", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.SessionCreated{ID: snap.ID, Token: token})
}

// handleGetSession returns the stored snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.SessionID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load session", zap.Stringer("id", id), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if snap == nil {
		err := &ErrSessionNotFound{ID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, snapshotResponse(snap))
}

// handleSaveSession replaces the stored snapshot. The slot must exist.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.SessionID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.SnapshotRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := s.store.GetSnapshot(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load session", zap.Stringer("id", id), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	if existing == nil {
		err := &ErrSessionNotFound{ID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	snap := &db.Snapshot{ID: id, Kind: req.Kind, Payload: req.Payload}
	if err := s.store.SaveSnapshot(r.Context(), snap); err != nil {
		s.logger.Error("failed to save session", zap.Stringer("id", id), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	s.jsonResponse(w, http.StatusOK, snapshotResponse(snap))
}

// handleDeleteSession removes the snapshot.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.SessionID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.store.DeleteSnapshot(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrSnapshotNotFound) {
			notFound := &ErrSessionNotFound{ID: id}
			s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
			return
		}
		s.logger.Error("failed to delete session", zap.Stringer("id", id), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func snapshotResponse(snap *db.Snapshot) types.SnapshotResponse {
	return types.SnapshotResponse{
		ID:        snap.ID,
		Kind:      snap.Kind,
		Payload:   snap.Payload,
		UpdatedAt: snap.UpdatedAt,
	}
}
