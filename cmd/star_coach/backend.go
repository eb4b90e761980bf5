package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonathan/star-coach/internal/apiclient"
	"github.com/jonathan/star-coach/internal/coach"
	"github.com/jonathan/star-coach/internal/extraction"
	"github.com/jonathan/star-coach/internal/fetch"
	"github.com/jonathan/star-coach/internal/ingestion"
	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/parsing"
	"github.com/jonathan/star-coach/internal/types"
	"go.uber.org/zap"
)

const renderTimeout = 45 * time.Second

// backend is everything the client commands need from either the proxy or
// the model itself.
type backend interface {
	coach.ChatStreamer
	extraction.Extractor
	AnalyzeJob(ctx context.Context, req types.AnalyzeRequest) (*types.JobAnalysis, error)
	ParsePDF(ctx context.Context, data []byte, filename string) (string, error)
	Close() error
}

var (
	_ backend = (*apiclient.Client)(nil)
	_ backend = (*localBackend)(nil)
)

// newBackend uses the proxy when a server URL is configured and calls the
// model directly otherwise.
func newBackend(ctx context.Context) (backend, error) {
	if settings.ServerURL != "" {
		logger.Debug("using coaching proxy", zap.String("url", settings.ServerURL))
		return apiclient.New(settings.ServerURL, apiclient.WithLogger(logger)), nil
	}
	if settings.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required (or set STAR_COACH_SERVER to use a proxy)")
	}

	client, err := llm.NewClient(ctx, llm.ConfigFromEnv(), settings.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return newLocalBackend(client, settings.UseBrowser), nil
}

// localBackend calls the model in-process, the same way the proxy does.
type localBackend struct {
	*coach.LLMStreamer
	*extraction.LLMExtractor

	client llm.Client
	render fetch.Renderer
}

func newLocalBackend(client llm.Client, useBrowser bool) *localBackend {
	b := &localBackend{
		LLMStreamer:  coach.NewLLMStreamer(client),
		LLMExtractor: extraction.NewLLMExtractor(client),
		client:       client,
	}
	if useBrowser {
		b.render = fetch.HeadlessRenderer(renderTimeout, logger)
	}
	return b
}

// AnalyzeJob fetches the posting when only a URL is given and analyses it.
func (b *localBackend) AnalyzeJob(ctx context.Context, req types.AnalyzeRequest) (*types.JobAnalysis, error) {
	text := req.JobDescription
	if text == "" && req.JobURL != "" {
		fetched, _, err := ingestion.IngestFromURL(ctx, req.JobURL, ingestion.URLOptions{
			Render: b.render,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not read the job posting at %s: %w", req.JobURL, err)
		}
		text = fetched
	}
	return parsing.AnalyzeJobDescription(ctx, b.client, text)
}

// ParsePDF implements backend.
func (b *localBackend) ParsePDF(ctx context.Context, data []byte, _ string) (string, error) {
	return parsing.ExtractPDFText(ctx, b.client, data)
}

// Close implements backend.
func (b *localBackend) Close() error {
	return b.client.Close()
}

// logFilePath places the terminal UI log next to the session database.
func logFilePath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "coach.log")
}
