package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP
// fetch. Shorter pages are most likely rendered client-side.
const MinContentLength = 500

// ShouldUseBrowser reports whether text is too short to be a job posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the HTML of a page after its scripts have run.
type Renderer func(ctx context.Context, url string) (string, error)

// HeadlessRenderer renders pages in headless Chrome. Chrome or Chromium must
// be installed.
func HeadlessRenderer(timeout time.Duration, logger *zap.Logger) Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, url string) (string, error) {
		logger.Debug("rendering page in headless browser", zap.String("url", url))

		allocCtx, cancel := chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)...,
		)
		defer cancel()

		browserCtx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
		defer cancel()

		var html string
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
			// job boards render the description after load
			chromedp.Sleep(3*time.Second),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return "", fmt.Errorf("browser rendering failed: %w", err)
		}

		logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
		return html, nil
	}
}
