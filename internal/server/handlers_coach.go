package server

import (
	"net/http"

	"github.com/jonathan/star-coach/internal/conversation"
	"github.com/jonathan/star-coach/internal/extraction"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
	"go.uber.org/zap"
)

// handleCoach streams the coach's reply as SSE text deltas. Failures before
// the first delta are answered with a JSON error; later failures end the
// stream with the error sentinel.
func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var req types.CoachRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := conversation.ValidateProjection(req.Messages); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse := newSSEWriter(w)
	err := s.chat.StreamChat(r.Context(), req, sse.Delta)
	if err == nil {
		_ = sse.Done()
		return
	}

	s.logger.Error("coach stream failed",
		zap.String("workflow", req.Workflow),
		zap.String("section", req.CurrentSection),
		zap.Bool("started", sse.Started()),
		zap.Error(err),
	)
	if sse.Started() {
		_ = sse.Fail()
		return
	}

	if r.Context().Err() != nil {
		// client went away
		return
	}
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadGateway
	}
	s.errorResponse(w, status, "coach request failed")
}

// handleExtract returns the structured updates the model found in the
// conversation. Unusable model output is not an error: the response then
// carries null updates and the caller's current section.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req types.CoachRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := conversation.ValidateProjection(req.Messages); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	wf, ok := workflow.Lookup(req.Workflow)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "unknown workflow")
		return
	}
	info := wf.Describe()

	body, err := s.extractor.Extract(r.Context(), req)
	if err != nil {
		s.logger.Error("extraction failed", zap.String("workflow", req.Workflow), zap.Error(err))
		s.errorResponse(w, HTTPStatus(&ErrUpstream{Message: "extraction failed", Cause: err}), "extraction failed")
		return
	}

	resp, ok := extraction.NormalizeResponse(body, info.Name, info.UpdatesKey, req.CurrentSection)
	if !ok {
		s.logger.Warn("unusable extraction output", zap.String("workflow", req.Workflow), zap.Int("bytes", len(body)))
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
