package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/star-coach/internal/fetch"
	"go.uber.org/zap"
)

var (
	// ErrHTTPRequestFailed is returned when the posting could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL.
type URLOptions struct {
	// Render is used when the plain fetch yields too little text. Nil
	// disables the fallback.
	Render fetch.Renderer
	Fetch  *fetch.Options
	Logger *zap.Logger
}

// IngestFromURL fetches a job posting, extracts its main text with the
// selectors of the detected job board, and cleans it. Pages that yield too
// little text are re-rendered with opts.Render when set.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("ingesting job posting", zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if opts.Render != nil && fetch.ShouldUseBrowser(textContent) {
		logger.Debug("content too short, rendering in browser",
			zap.Int("chars", len(textContent)), zap.Int("min", fetch.MinContentLength))

		html, renderErr := opts.Render(ctx, urlStr)
		switch {
		case renderErr != nil:
			// keep the plain HTTP text
			logger.Warn("browser rendering failed", zap.String("url", urlStr), zap.Error(renderErr))
		default:
			if text, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...); err == nil {
				textContent = text
				rendered = true
			}
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: page has no text", ErrContentExtractionFailed)
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Rendered = rendered
	logger.Debug("ingested job posting", zap.Int("chars", metadata.Chars), zap.Bool("rendered", rendered))

	return cleanedText, metadata, nil
}
