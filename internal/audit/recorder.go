package audit

import (
	"context"
	"log/slog"
	"time"

	"offboard/internal/platform/metrics"
)

// Mirror receives a copy of every recorded entry. Implementations must not
// block; the Kafka stream publisher is the production implementation.
type Mirror interface {
	Publish(ctx context.Context, entry Entry)
}

// Recorder is the write path domain logic uses. Record is deliberately
// log-don't-fail: a broken audit sink must never throw the operation it
// describes into a retry loop, so failures are logged and counted instead
// of returned.
type Recorder struct {
	store   Store
	mirror  Mirror
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(store Store, mirror Mirror, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, mirror: mirror, logger: logger, metrics: m}
}

// Record persists an entry, filling the timestamp when unset.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "audit append failed",
			"action", entry.Action,
			"status", entry.Status,
			"error", err,
		)
		return
	}

	r.metrics.IncAuditEntry(string(entry.Status))

	if r.mirror != nil {
		r.mirror.Publish(ctx, entry)
	}
}

// Query validates filters and returns one page of entries with the total.
func (r *Recorder) Query(ctx context.Context, filters ListFilters) ([]Entry, int, error) {
	if err := filters.Normalize(); err != nil {
		return nil, 0, err
	}
	return r.store.List(ctx, filters)
}

// Store exposes the underlying store for components that need direct reads,
// such as the export runner.
func (r *Recorder) Store() Store {
	return r.store
}
