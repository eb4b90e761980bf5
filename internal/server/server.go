package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/star-coach/internal/coach"
	"github.com/jonathan/star-coach/internal/config"
	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/extraction"
	"github.com/jonathan/star-coach/internal/fetch"
	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/server/middleware"
	"github.com/jonathan/star-coach/internal/server/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// maxJSONBody bounds ordinary request bodies.
	maxJSONBody = 1 << 20
	// maxPDFBody leaves room for the JSON envelope around a 15 MiB base64 PDF.
	maxPDFBody = 16 << 20

	renderTimeout    = 45 * time.Second
	shutdownTimeout  = 30 * time.Second
	defaultPruneTick = time.Hour
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       db.SnapshotStore
	llm         llm.Client
	chat        coach.ChatStreamer
	extractor   extraction.Extractor
	tokens      *JWTService
	rateLimiter *ratelimit.Limiter
	render      fetch.Renderer
	fetchOpts   *fetch.Options
	logger      *zap.Logger
	snapshotTTL time.Duration
	pruneEvery  time.Duration
}

// Config holds server configuration
type Config struct {
	Port        int
	APIKey      string
	DatabaseURL string // PostgreSQL; empty falls back to the SQLite file at DBPath
	DBPath      string
	UseBrowser  bool // render SPA job postings with headless Chrome
	Logger      *zap.Logger
	// SnapshotTTL prunes sessions not saved for this long; zero keeps them forever.
	SnapshotTTL time.Duration
}

// Deps are the collaborators of a Server. New builds them from Config;
// tests pass fakes to NewWithDeps.
type Deps struct {
	LLM       llm.Client
	Store     db.SnapshotStore
	Tokens    *config.TokenConfig
	RateLimit *ratelimit.Config
	Render    fetch.Renderer
	Fetch     *fetch.Options
}

// New creates a new server instance. It refuses to start without a model
// credential.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens, err := config.NewTokenConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create token config: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.ConfigFromEnv(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	var store db.SnapshotStore
	if cfg.DatabaseURL != "" {
		store, err = db.Connect(ctx, cfg.DatabaseURL)
	} else {
		logger.Warn("DATABASE_URL not set, storing sessions in SQLite", zap.String("path", cfg.DBPath))
		store, err = db.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deps := Deps{
		LLM:       client,
		Store:     store,
		Tokens:    tokens,
		RateLimit: ratelimit.LoadConfig(),
	}
	if cfg.UseBrowser {
		deps.Render = fetch.HeadlessRenderer(renderTimeout, logger)
	}
	return NewWithDeps(cfg, deps), nil
}

// NewWithDeps creates a server from ready-made collaborators.
func NewWithDeps(cfg Config, deps Deps) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		store:       deps.Store,
		llm:         deps.LLM,
		chat:        coach.NewLLMStreamer(deps.LLM),
		extractor:   extraction.NewLLMExtractor(deps.LLM),
		tokens:      NewJWTService(deps.Tokens),
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		render:      deps.Render,
		fetchOpts:   deps.Fetch,
		logger:      logger.Named("server"),
		snapshotTTL: cfg.SnapshotTTL,
		pruneEvery:  defaultPruneTick,
	}

	requireSession := middleware.RequireSession(s.tokens.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/coach", s.handleCoach)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/analyze-jd", s.handleAnalyzeJD)
	mux.HandleFunc("POST /api/parse-pdf", s.handleParsePDF)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.Handle("GET /api/sessions/{id}", requireSession(http.HandlerFunc(s.handleGetSession)))
	mux.Handle("PUT /api/sessions/{id}", requireSession(http.HandlerFunc(s.handleSaveSession)))
	mux.Handle("DELETE /api/sessions/{id}", requireSession(http.HandlerFunc(s.handleDeleteSession)))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute, // coaching replies stream
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully. The
// rate limiter sweep and snapshot pruning run alongside the listener.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.rateLimiter.Run(gctx)
	})

	if s.snapshotTTL > 0 {
		g.Go(func() error {
			return s.pruneSnapshots(gctx)
		})
	}

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}

// Close releases the store and the model client.
func (s *Server) Close() error {
	return errors.Join(s.store.Close(), s.llm.Close())
}

func (s *Server) pruneSnapshots(ctx context.Context) error {
	ticker := time.NewTicker(s.pruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.store.DeleteOlderThan(ctx, s.snapshotTTL)
			if err != nil {
				s.logger.Warn("snapshot pruning failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("pruned idle sessions", zap.Int64("count", n))
			}
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-endpoint budget
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Message: "request body too large"}
		}
		return &ErrValidation{Message: "invalid JSON body"}
	}
	return nil
}

// clientID identifies the caller by IP address.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Info("rate limit exceeded",
		zap.Int("limit", info.Limit), zap.Time("reset", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
