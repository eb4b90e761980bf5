// Package apiclient talks to the coaching proxy over HTTP. Client satisfies
// the chat and extraction interfaces the coaching session needs, so a
// session can run against a remote proxy instead of calling the model.
package apiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/coach"
	"github.com/jonathan/star-coach/internal/extraction"
	"github.com/jonathan/star-coach/internal/stream"
	"github.com/jonathan/star-coach/internal/types"
	"go.uber.org/zap"
)

// maxResponseBytes caps non-streaming response bodies.
const maxResponseBytes = 4 << 20

// DefaultTimeout applies to non-streaming requests. Streaming requests are
// bounded by their context only.
const DefaultTimeout = 2 * time.Minute

// Error is a non-2xx response from the proxy.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proxy returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("proxy returned HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the proxy.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is an HTTP client for the coaching proxy.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

var (
	_ coach.ChatStreamer   = (*Client)(nil)
	_ extraction.Extractor = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// WithTimeout sets the timeout of non-streaming requests.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// New creates a client for the proxy at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// StreamChat implements coach.ChatStreamer. A proxy error before the stream
// starts is returned as *Error; a mid-stream failure as stream.ErrStreamFailed.
func (c *Client) StreamChat(ctx context.Context, req types.CoachRequest, onDelta func(string) error) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/coach", "", req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, err = stream.Decode(ctx, resp.Body, onDelta, stream.WithLogger(c.logger))
	return err
}

// Extract implements extraction.Extractor. The body is returned as received.
func (c *Client) Extract(ctx context.Context, req types.CoachRequest) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, "/api/extract", "", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}
	return body, nil
}

// AnalyzeJob asks the proxy for the competencies of a job description, given
// as text or as a posting URL.
func (c *Client) AnalyzeJob(ctx context.Context, req types.AnalyzeRequest) (*types.JobAnalysis, error) {
	var analysis types.JobAnalysis
	if err := c.call(ctx, http.MethodPost, "/api/analyze-jd", "", req, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ParsePDF sends a PDF to the proxy and returns its text.
func (c *Client) ParsePDF(ctx context.Context, data []byte, filename string) (string, error) {
	req := types.ParsePDFRequest{
		PDFBase64: base64.StdEncoding.EncodeToString(data),
		Filename:  filename,
	}
	var out types.ParsePDFResponse
	if err := c.call(ctx, http.MethodPost, "/api/parse-pdf", "", req, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// CreateSession stores a first snapshot and returns its ID and access token.
func (c *Client) CreateSession(ctx context.Context, kind string, payload any) (*types.SessionCreated, error) {
	req, err := snapshotRequest(kind, payload)
	if err != nil {
		return nil, err
	}
	var created types.SessionCreated
	if err := c.call(ctx, http.MethodPost, "/api/sessions", "", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SaveSession replaces the snapshot of an existing session.
func (c *Client) SaveSession(ctx context.Context, id uuid.UUID, token, kind string, payload any) error {
	req, err := snapshotRequest(kind, payload)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPut, sessionPath(id), token, req, nil)
}

// LoadSession returns the stored snapshot, or nil if the session does not exist.
func (c *Client) LoadSession(ctx context.Context, id uuid.UUID, token string) (*types.SnapshotResponse, error) {
	var snap types.SnapshotResponse
	if err := c.call(ctx, http.MethodGet, sessionPath(id), token, nil, &snap); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id uuid.UUID, token string) error {
	return c.call(ctx, http.MethodDelete, sessionPath(id), token, nil, nil)
}

func sessionPath(id uuid.UUID) string {
	return "/api/sessions/" + id.String()
}

func snapshotRequest(kind string, payload any) (types.SnapshotRequest, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return types.SnapshotRequest{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return types.SnapshotRequest{Kind: kind, Payload: data}, nil
}

// call sends a JSON request and decodes a JSON response into out, if non-nil.
func (c *Client) call(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("proxy request", zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// checkStatus turns a non-2xx response into *Error, taking the message from
// the proxy's JSON error body when there is one.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &Error{StatusCode: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err == nil {
		apiErr.Message = body.Error
		if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
