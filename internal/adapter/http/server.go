package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// FireSource serves the newest processed snapshot and reports readiness.
type FireSource interface {
	sharedobs.ReadinessChecker
	Latest(ctx context.Context) (domain.Snapshot, error)
}

const fireDataError = "Could not retrieve or process fire data"

// Server exposes the fire API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     FireSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/fires, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, source FireSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     withCORS(mux),
			ReadTimeout: 10 * time.Second,
			// A cold /api/fires request waits for a full fetch and pipeline run.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /api/fires", s.handleFires)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(source))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleFires(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Latest(r.Context())
	if err != nil {
		s.logger.Error("serve fire data", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": fireDataError})
		return
	}

	w.Header().Set("X-Fetched-At", snap.FetchedAt.Format(time.RFC3339))
	w.Header().Set("X-Run-Id", snap.RunID)
	sharedobs.WriteJSON(w, http.StatusOK, snap.Result)
}

// withCORS allows any origin to read the API and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Expose-Headers", "X-Fetched-At, X-Run-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
