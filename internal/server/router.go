package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oks-citadel/applyflow/internal/observability"
	"github.com/oks-citadel/applyflow/internal/queue"
	"github.com/oks-citadel/applyflow/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(q queue.Queue, metrics *observability.Metrics, registry *prometheus.Registry, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		submissions := handler.NewSubmissionHandler(q, metrics, logger)
		admin := handler.NewAdminHandler(q, logger)

		r.Post("/submissions", submissions.Create)
		r.Get("/queue/stats", admin.QueueStats)
		r.Get("/deadletters", admin.ListDeadLetters)
		r.Post("/deadletters/{taskID}/requeue", admin.RequeueDeadLetter)
		r.Delete("/deadletters/{taskID}", admin.PurgeDeadLetter)
	})

	return r
}
