package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/star-coach/internal/ingestion"
	"github.com/jonathan/star-coach/internal/parsing"
	"github.com/jonathan/star-coach/internal/types"
	"go.uber.org/zap"
)

// handleAnalyzeJD returns the job title and interview competencies of a
// job description, given as text or fetched from a URL.
func (s *Server) handleAnalyzeJD(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		msg := "Please provide a job description (at least 50 characters)"
		if req.JobURL != "" {
			msg = "Please provide a valid job posting URL"
		}
		s.errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	text := req.JobDescription
	if strings.TrimSpace(text) == "" && req.JobURL != "" {
		fetched, meta, err := ingestion.IngestFromURL(r.Context(), req.JobURL, ingestion.URLOptions{
			Render: s.render,
			Fetch:  s.fetchOpts,
			Logger: s.logger,
		})
		if err != nil {
			s.logger.Warn("job posting fetch failed", zap.String("url", req.JobURL), zap.Error(err))
			s.errorResponse(w, HTTPStatus(err), "Could not read the job posting at that URL")
			return
		}
		s.logger.Debug("fetched job posting",
			zap.String("platform", meta.Platform), zap.Bool("rendered", meta.Rendered), zap.Int("chars", meta.Chars))
		text = fetched
	}

	analysis, err := parsing.AnalyzeJobDescription(r.Context(), s.llm, text)
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("job analysis failed", zap.Error(err))
		}
		s.errorResponse(w, status, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, analysis)
}

// handleParsePDF turns an uploaded PDF into plain text with the model.
func (s *Server) handleParsePDF(w http.ResponseWriter, r *http.Request) {
	var req types.ParsePDFRequest
	if err := decodeJSON(w, r, maxPDFBody, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if req.PDFBase64 == "" {
		s.errorResponse(w, http.StatusBadRequest, "No PDF data provided")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "PDF file too large. Maximum size is 10MB.")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "PDF data is not valid base64")
		return
	}

	text, err := parsing.ExtractPDFText(r.Context(), s.llm, data)
	if err != nil {
		var empty *parsing.ValidationError
		if errors.As(err, &empty) {
			s.errorResponse(w, http.StatusBadRequest, "No text content could be extracted from this PDF.")
			return
		}
		s.logger.Error("pdf extraction failed", zap.String("filename", req.Filename), zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "Failed to process PDF")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ParsePDFResponse{Text: text, Filename: req.Filename})
}
