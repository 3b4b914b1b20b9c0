package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/cache"
	"fintrack/internal/command"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/settings"
)

// Server exposes the ledger as a JSON API. It owns the in-memory
// snapshot: the record store pushes full snapshots into ApplySnapshot
// and every read is answered from the ledger without touching the store.
type Server struct {
	http.Server

	service  *services.RecordService
	ledger   *ledger.Ledger
	settings *settings.Store
	userID   string
	logger   *applog.Logger

	// session guards the single edit-in-progress. One user, one session.
	sessionMu sync.Mutex
	session   command.Session

	rateLimiter *rateLimiter
	viewCache   *cache.LRUCache[aggregate.View]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr, userID string, svc *services.RecordService, prefs *settings.Store, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:      svc,
		ledger:       ledger.New(),
		settings:     prefs,
		userID:       userID,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:  newRateLimiter(),
		viewCache:    cache.NewLRUCache[aggregate.View](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.viewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/ledger", s.withMiddleware(s.handleLedgerView))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleCategories))

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleSubmit))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdate))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDelete))

	mux.HandleFunc("GET /api/edit", s.withMiddleware(s.handleEditState))
	mux.HandleFunc("POST /api/edit/{id}", s.withMiddleware(s.handleEditBegin))
	mux.HandleFunc("DELETE /api/edit", s.withMiddleware(s.handleEditCancel))

	mux.HandleFunc("GET /api/settings", s.withMiddleware(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withMiddleware(s.handlePutSettings))

	return s
}

// ApplySnapshot replaces the in-memory snapshot and drops every cached
// view. Wired as the store subscription callback.
func (s *Server) ApplySnapshot(records []core.Transaction) {
	s.ledger.ReplaceAll(records)
	s.viewCache.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request
// logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		r = r.WithContext(context.WithValue(r.Context(), applog.LoggerContextKey,
			s.logger.With(applog.FieldRequestID, requestID)))

		// Rate limit the mutating methods only; reads are cached and cheap.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "", "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		applog.RequestLogger(s.logger)(r.Context(), r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

func viewCacheKey(year int, month time.Month, filter ledger.Filter) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(int(month)) + "-" + string(filter)
}
