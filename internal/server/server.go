package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/logging"
	"github.com/jonathan/profile-architect/internal/rendering"
	"github.com/jonathan/profile-architect/internal/server/ratelimit"
	"github.com/jonathan/profile-architect/internal/workflow"
)

// DefaultSessionTTL is how long an idle session is kept in memory.
const DefaultSessionTTL = 2 * time.Hour

// Capturer turns print HTML into PDF or JPEG bytes.
type Capturer interface {
	Render(ctx context.Context, html string, settings rendering.PageSettings) ([]byte, error)
	Snapshot(ctx context.Context, html string, settings rendering.PageSettings) ([]byte, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	sessions    *sessionRegistry
	capturer    Capturer
	settings    rendering.PageSettings
	rateLimiter *ratelimit.Limiter
	sessionTTL  time.Duration
	stopSweep   chan struct{}
}

// Config holds server configuration
type Config struct {
	Port           int
	Client         llm.Client
	Capturer       Capturer // nil uses headless Chrome at ChromePath
	ChromePath     string
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second per client; 0 disables limiting
	RateBurst      int
	SessionTTL     time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("an LLM client is required")
	}

	capturer := cfg.Capturer
	if capturer == nil {
		capturer = rendering.NewPDFRenderer(cfg.ChromePath)
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	s := &Server{
		capturer:    capturer,
		settings:    rendering.DefaultPageSettings(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit, cfg.RateBurst)),
		sessionTTL:  ttl,
		stopSweep:   make(chan struct{}),
	}
	s.sessions = newSessionRegistry(func() *workflow.Session {
		return workflow.NewSession(cfg.Client, generation.WithTimeout(cfg.RequestTimeout))
	})

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // event streams stay open; model calls are bounded by RequestTimeout
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleSessionEvents)

	// Workflow steps
	mux.HandleFunc("POST /sessions/{id}/discovery", s.handleSubmitDiscovery)
	mux.HandleFunc("POST /sessions/{id}/profile", s.handleSubmitProfile)
	mux.HandleFunc("POST /sessions/{id}/back/{target}", s.handleBack)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleReset)

	// Result step
	mux.HandleFunc("POST /sessions/{id}/refine", s.handleRefine)
	mux.HandleFunc("POST /sessions/{id}/cover-letter", s.handleCoverLetter)
	mux.HandleFunc("PATCH /sessions/{id}/sections/{index}", s.handlePatchSection)
	mux.HandleFunc("PATCH /sessions/{id}/summary", s.handlePatchSummary)
	mux.HandleFunc("PATCH /sessions/{id}/positioning", s.handlePatchPositioning)
	mux.HandleFunc("GET /sessions/{id}/export/{format}", s.handleExport)

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go s.sweepSessions()

	select {
	case <-stop:
	case err := <-errCh:
		s.shutdownBackground()
		return fmt.Errorf("server error: %w", err)
	}
	logging.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.shutdownBackground()
	logging.Info().Msg("server stopped")
	return nil
}

// shutdownBackground stops the rate limiter cleanup and session sweep goroutines.
func (s *Server) shutdownBackground() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	select {
	case <-s.stopSweep:
	default:
		close(s.stopSweep)
	}
}

// sweepSessions periodically drops idle sessions.
func (s *Server) sweepSessions() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.expire(time.Now().Add(-s.sessionTTL)); n > 0 {
				logging.Debug().Int("removed", n).Int("remaining", s.sessions.count()).Msg("expired idle sessions")
			}
		case <-s.stopSweep:
			return
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the logging wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
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
		logging.Error().Err(err).Msg("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failResponse maps err to a status and writes it.
func (s *Server) failResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Int("status", status).Msg("request failed")
	}
	s.errorResponse(w, status, errorMessage(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		retry := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	logging.Warn().Int("limit", info.Limit).Int("remaining", info.Remaining).Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
