package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"offboard/internal/audit"
	"offboard/internal/audit/export"
	"offboard/internal/offboarding"
	"offboard/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Handler owns the HTTP surface: the audit trail endpoints, the export
// download sandbox, and the offboarding operations.
type Handler struct {
	logger      *slog.Logger
	recorder    *audit.Recorder
	offboarding *offboarding.Service
	exports     *export.Runner
	resolver    *export.Resolver
	validator   middleware.TokenValidator
}

func NewHandler(
	logger *slog.Logger,
	recorder *audit.Recorder,
	offboardingService *offboarding.Service,
	exports *export.Runner,
	resolver *export.Resolver,
	validator middleware.TokenValidator,
) *Handler {
	return &Handler{
		logger:      logger,
		recorder:    recorder,
		offboarding: offboardingService,
		exports:     exports,
		resolver:    resolver,
		validator:   validator,
	}
}

// NewRouter wires every endpoint with the shared middleware stack. Audit
// queries, exports, and history are admin-only; probing and executing an
// offboarding need any authenticated caller.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Get("/offboarding/search/{registration}", h.handleSearch)
		r.Post("/offboarding/execute/{registration}", h.handleExecute)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))

			r.Get("/offboarding/history", h.handleHistory)
			r.Get("/logs", h.handleListLogs)
			r.Post("/logs/export", h.handleStartExport)
			r.Get("/logs/export/{filename}", h.handleDownloadExport)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
