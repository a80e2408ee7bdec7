package httptransport

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"offboard/internal/audit"
	"offboard/internal/audit/export"
	dErrors "offboard/pkg/domainerrors"
	"offboard/pkg/requestcontext"
)

// logEntry is the wire shape of one audit entry.
type logEntry struct {
	ID                 int64  `json:"id"`
	Action             string `json:"action"`
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
	Username           string `json:"username,omitempty"`
	UserID             string `json:"user_id,omitempty"`
	TargetUsername     string `json:"target_username,omitempty"`
	TargetRegistration string `json:"target_registration,omitempty"`
	Resource           string `json:"resource,omitempty"`
	IPAddress          string `json:"ip_address,omitempty"`
	UserAgent          string `json:"user_agent,omitempty"`
	CreatedAt          string `json:"created_at"`
}

func toLogEntry(e audit.Entry) logEntry {
	out := logEntry{
		ID:                 e.ID,
		Action:             string(e.Action),
		Status:             string(e.Status),
		Message:            e.Message,
		Username:           e.ActorUsername,
		TargetUsername:     e.TargetUsername,
		TargetRegistration: e.TargetRegistration,
		Resource:           e.Resource,
		IPAddress:          e.IPAddress,
		UserAgent:          e.UserAgent,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
	if e.ActorID != nil {
		out.UserID = e.ActorID.String()
	}
	return out
}

// handleListLogs serves the filtered audit trail, newest first.
func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// Normalize here too so the response envelope echoes the effective
	// page and limit, not the raw query values.
	if err := filters.Normalize(); err != nil {
		writeError(w, err)
		return
	}

	entries, total, err := h.recorder.Query(r.Context(), filters)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit query failed", "error", err)
		writeError(w, err)
		return
	}

	items := make([]logEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLogEntry(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  filters.Page,
		"limit": filters.Limit,
		"pages": filters.Pages(total),
	})
}

// exportRequest is the body of POST /logs/export.
type exportRequest struct {
	Format  string `json:"format"`
	Filters struct {
		Action   string `json:"action"`
		Username string `json:"username"`
		Status   string `json:"status"`
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	} `json:"filters"`
}

// handleStartExport schedules an asynchronous export job and reports where
// the file will appear.
func (h *Handler) handleStartExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		writeError(w, err)
		return
	}

	filters := audit.ListFilters{
		Action:   audit.Action(req.Filters.Action),
		Username: req.Filters.Username,
		Status:   audit.Status(req.Filters.Status),
	}
	if filters.DateFrom, err = parseTimeParam(req.Filters.DateFrom); err != nil {
		writeError(w, err)
		return
	}
	if filters.DateTo, err = parseTimeParam(req.Filters.DateTo); err != nil {
		writeError(w, err)
		return
	}
	if err := filters.Normalize(); err != nil {
		writeError(w, err)
		return
	}

	jobID := export.NewJobID()
	filename := export.Filename(jobID, format)

	if !h.exports.Enqueue(export.Job{ID: jobID, Format: format, Filters: filters, Filename: filename}) {
		writeError(w, dErrors.New(dErrors.CodeInternal, "export queue full"))
		return
	}

	h.auditFromRequest(r, audit.Entry{
		Action:   audit.ActionExportAuditLogs,
		Status:   audit.StatusSuccess,
		Message:  "Audit log export started (" + string(format) + " format)",
		Resource: filename,
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":       jobID,
		"status":       "processing",
		"format":       string(format),
		"download_url": "/logs/export/" + filename,
		"message":      "Export is being processed. Check download_url in a few moments.",
	})
}

// handleDownloadExport serves a finished export file. Hostile filenames are
// audited as suspicious activity; a well-formed name for a file that does
// not exist yet is a plain 404.
func (h *Handler) handleDownloadExport(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.resolver.Resolve(filename)
	if err != nil {
		h.auditFromRequest(r, audit.Entry{
			Action:   audit.ActionExportAuditLogs,
			Status:   audit.StatusFailed,
			Message:  "Path traversal attempt detected: " + filename,
			Resource: filename,
		})
		writeError(w, err)
		return
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, dErrors.New(dErrors.CodeNotFound, "File not ready"))
			return
		}
		h.logger.ErrorContext(r.Context(), "export file stat failed", "file", filename, "error", err)
		writeError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export file unavailable"))
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}

// filtersFromQuery reads audit list filters from query parameters.
func filtersFromQuery(r *http.Request) (audit.ListFilters, error) {
	q := r.URL.Query()
	filters := audit.ListFilters{
		Action:   audit.Action(q.Get("action")),
		Username: q.Get("username"),
		Status:   audit.Status(q.Get("status")),
		Page:     intParam(q.Get("page")),
		Limit:    intParam(q.Get("limit")),
	}

	var err error
	if filters.DateFrom, err = parseTimeParam(q.Get("date_from")); err != nil {
		return audit.ListFilters{}, err
	}
	if filters.DateTo, err = parseTimeParam(q.Get("date_to")); err != nil {
		return audit.ListFilters{}, err
	}
	return filters, nil
}

// parseTimeParam accepts RFC 3339 timestamps and bare dates.
func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeValidation, "invalid timestamp %q", s)
}

func intParam(s string) int {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			return n
		}
	}
	return n
}

// auditFromRequest stamps actor and request metadata onto an entry and
// records it.
func (h *Handler) auditFromRequest(r *http.Request, entry audit.Entry) {
	ctx := r.Context()
	if id := requestcontext.ActorID(ctx); id != uuid.Nil {
		entry.ActorID = &id
	}
	entry.ActorUsername = requestcontext.ActorName(ctx)
	entry.IPAddress = requestcontext.ClientIP(ctx)
	entry.UserAgent = requestcontext.UserAgent(ctx)
	h.recorder.Record(ctx, entry)
}
