package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cobranca/internal/cache"
	"cobranca/internal/core"
	"cobranca/internal/log"
	"cobranca/internal/services"
)

// Derivations read one shared snapshot; every write invalidates it, so the
// cache holds at most a handful of entries.
const snapshotCacheKey = "snapshot"

type Server struct {
	http.Server
	loader    *services.SnapshotLoader
	mutations *services.MutationService
	logger    *log.Logger

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	snapshotCache *cache.LRUCache[core.Snapshot]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, loader *services.SnapshotLoader, mutations *services.MutationService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		loader:           loader,
		mutations:        mutations,
		logger:           log.New(log.Config{Component: log.ComponentHTTP}),
		rateLimiter:      newRateLimiter(60),
		metrics:          &securityMetrics{},
		snapshotCache:    cache.NewLRUCache[core.Snapshot](4, 30*time.Second),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Dashboard and collection views (read-only, snapshot-backed)
	mux.HandleFunc("/api/dashboard/kpis", s.withSecurityHeaders(s.handleKPIs))
	mux.HandleFunc("/api/dashboard/status-summary", s.withSecurityHeaders(s.handleStatusSummary))
	mux.HandleFunc("/api/collections/overdue", s.withSecurityHeaders(s.handleOverdueList))
	mux.HandleFunc("/api/collections/upcoming", s.withSecurityHeaders(s.handleUpcomingList))
	mux.HandleFunc("/api/clients/debts", s.withSecurityHeaders(s.handleClientDebts))

	// Mutations
	mux.HandleFunc("/api/clients", s.withSecurityHeaders(s.handleClients))
	mux.HandleFunc("/api/contracts", s.withSecurityHeaders(s.handleCreateContract))
	mux.HandleFunc("/api/installments/pay", s.withSecurityHeaders(s.handlePayInstallment))

	// Employees, payroll, commissions
	mux.HandleFunc("/api/employees", s.withSecurityHeaders(s.handleCreateEmployee))
	mux.HandleFunc("/api/employees/payroll-summary", s.withSecurityHeaders(s.handlePayrollSummary))
	mux.HandleFunc("/api/employees/commission-summary", s.withSecurityHeaders(s.handleCommissionSummary))
	mux.HandleFunc("/api/employee-payments", s.withSecurityHeaders(s.handleCreateEmployeePayment))
	mux.HandleFunc("/api/commissions", s.withSecurityHeaders(s.handleCreateCommission))
	mux.HandleFunc("/api/commissions/pay", s.withSecurityHeaders(s.handleMarkCommissionPaid))

	// Fixed bills
	mux.HandleFunc("/api/fixed-bills", s.withSecurityHeaders(s.handleFixedBills))
	mux.HandleFunc("/api/fixed-bill-installments/pay", s.withSecurityHeaders(s.handlePayFixedBillInstallment))
	mux.HandleFunc("/api/fixed-bill-installments/reopen", s.withSecurityHeaders(s.handleReopenFixedBillInstallment))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		fields := log.NewFields().
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer"))
		s.logger.InfoContext(ctx, "Request started", fields.ToSlice()...)

		// Rate limit writes only; reads are snapshot-cached and cheap.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		done := log.NewFields().
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < 400)
		done[log.FieldMethod] = r.Method
		done[log.FieldPath] = r.URL.Path
		s.logger.InfoContext(ctx, "Request completed", done.ToSlice()...)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// snapshot returns the cached derivation snapshot, loading a fresh one on miss.
func (s *Server) snapshot(ctx context.Context) (core.Snapshot, error) {
	if snap, found := s.snapshotCache.Get(snapshotCacheKey); found {
		s.logger.DebugContext(ctx, "Snapshot cache hit")
		return snap, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	snap, err := s.loader.Load(cctx)
	if err != nil {
		return core.Snapshot{}, err
	}

	if orphans := snap.OrphanInstallmentCount(); orphans > 0 {
		s.logger.WarnContext(ctx, "Snapshot has orphan installments", log.FieldOrphanCount, orphans)
	}

	s.snapshotCache.Set(snapshotCacheKey, snap)
	return snap, nil
}

func (s *Server) invalidateSnapshot() {
	s.snapshotCache.Delete(snapshotCacheKey)
}

// startCacheCleanup runs periodic cleanup for the snapshot cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.snapshotCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
