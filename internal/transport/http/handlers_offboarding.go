package httptransport

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"offboard/internal/offboarding"
	dErrors "offboard/pkg/domainerrors"
)

// handleSearch reports which external systems still hold an active account
// for the registration.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	registration := chi.URLParam(r, "registration")
	if registration == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "registration is required"))
		return
	}

	active := h.offboarding.Probe(r.Context(), registration)

	systems := make([]string, 0, len(active))
	for system, isActive := range active {
		if isActive {
			systems = append(systems, system)
		}
	}
	sort.Strings(systems)

	writeJSON(w, http.StatusOK, map[string]any{
		"registration": registration,
		"systems":      systems,
	})
}

// handleExecute runs the offboarding for one registration.
func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	registration := chi.URLParam(r, "registration")
	if registration == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "registration is required"))
		return
	}

	result, err := h.offboarding.Execute(r.Context(), registration)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// historyItem is the wire shape of one offboarding record.
type historyItem struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Registration   string   `json:"registration"`
	PerformedBy    string   `json:"performed_by"`
	OffboardedAt   string   `json:"offboarded_at"`
	RevokedSystems []string `json:"revoked_systems"`
}

// handleHistory lists past offboarding runs, newest first.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := offboarding.HistoryFilters{
		Registration: q.Get("registration"),
		Page:         intParam(q.Get("page")),
		Limit:        intParam(q.Get("limit")),
	}
	filters.Normalize()

	records, total, err := h.offboarding.History(r.Context(), filters)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history query failed", "error", err)
		writeError(w, err)
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		systems := rec.RevokedSystems
		if systems == nil {
			systems = []string{}
		}
		items = append(items, historyItem{
			ID:             rec.ID.String(),
			Username:       rec.Username,
			Registration:   rec.Registration,
			PerformedBy:    rec.PerformedBy,
			OffboardedAt:   rec.OffboardedAt.Format(time.RFC3339),
			RevokedSystems: systems,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  filters.Page,
		"pages": filters.Pages(total),
	})
}
