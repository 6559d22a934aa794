package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"factoring/internal/amqp"
	"factoring/internal/cache"
	"factoring/internal/core"
	"factoring/internal/ledger"
	"factoring/internal/log"
)

// AuditPublisher emits audit events for ingest and reset operations.
// A nil publisher disables auditing.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, event *amqp.AuditEvent) error
}

type appMetrics struct {
	startedAt         time.Time
	totalRequests     int64
	batchesIngested   int64
	recordsIngested   int64
	duplicatesSkipped int64
	rateMisses        int64
	emptyResults      int64
	cacheHits         int64
	cacheMisses       int64
	rateLimitHits     int64
}

type Server struct {
	http.Server
	store  ledger.RecordStore
	rates  core.RateTable
	audit  AuditPublisher
	logger *log.Logger

	rateLimiter    *rateLimiter
	breakdownCache *cache.LRUCache[core.Breakdown]

	metrics      appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, store ledger.RecordStore, rates core.RateTable, audit AuditPublisher, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:          store,
		rates:          rates,
		audit:          audit,
		logger:         logger.WithComponent(log.ComponentHTTP),
		rateLimiter:    newRateLimiter(),
		breakdownCache: cache.NewLRUCache[core.Breakdown](200, 5*time.Minute),
		metrics:        appMetrics{startedAt: time.Now()},
	}

	mux.HandleFunc("/rawdata", s.withMiddleware(s.handleRawData))
	mux.HandleFunc("/calculateValues", s.withMiddleware(s.handleCalculateValues))
	mux.HandleFunc("/customerTotal", s.withMiddleware(s.handleCustomerTotal))
	mux.HandleFunc("/get", s.withMiddleware(s.handleGet))
	mux.HandleFunc("/reset", s.withMiddleware(s.handleReset))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	return s
}

// Caches returns the cleanable caches for registration with a cache manager.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.breakdownCache}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request IDs, security headers, rate limiting on POST,
// and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.metrics.totalRequests, 1)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, &s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logger.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// publishAudit emits an audit event if a publisher is configured. Failures
// are logged, never surfaced to the caller.
func (s *Server) publishAudit(ctx context.Context, event *amqp.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.PublishAudit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish audit event",
			"event", event.Event, "error", err)
	}
}
