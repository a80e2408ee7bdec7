package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"offboard/internal/audit"
	"offboard/internal/platform/metrics"
)

// fetchLimit is the page size used when draining the store for an export.
const fetchLimit = 500

// Job is one asynchronous export request. There is no job status API; the
// file either appears under the export directory or a failure is logged.
type Job struct {
	ID       string
	Format   Format
	Filters  audit.ListFilters
	Filename string
}

// Runner executes export jobs on a single background worker. Jobs are
// accepted best-effort: a full queue rejects instead of blocking the
// request path.
type Runner struct {
	store   audit.Store
	dir     string
	logger  *slog.Logger
	metrics *metrics.Metrics

	jobs chan Job
	wg   sync.WaitGroup
	once sync.Once
}

// NewRunner creates a runner writing into dir, which must exist.
func NewRunner(store audit.Store, dir string, logger *slog.Logger, m *metrics.Metrics) *Runner {
	return &Runner{
		store:   store,
		dir:     dir,
		logger:  logger,
		metrics: m,
		jobs:    make(chan Job, 64),
	}
}

// Start launches the worker goroutine.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for job := range r.jobs {
			r.run(ctx, job)
		}
	}()
}

// Enqueue schedules a job. Returns false when the queue is full.
func (r *Runner) Enqueue(job Job) bool {
	select {
	case r.jobs <- job:
		return true
	default:
		r.logger.Warn("export queue full, job rejected", "job_id", job.ID, "format", job.Format)
		return false
	}
}

// Drain stops accepting jobs and waits for in-flight work, bounded by ctx.
func (r *Runner) Drain(ctx context.Context) {
	r.once.Do(func() { close(r.jobs) })

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("export drain timed out")
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	started := time.Now()

	entries, err := r.fetchAll(ctx, job.Filters)
	if err != nil {
		r.fail(job, fmt.Errorf("fetch entries: %w", err))
		return
	}

	data, err := Render(job.Format, FromEntries(entries))
	if err != nil {
		r.fail(job, fmt.Errorf("render %s: %w", job.Format, err))
		return
	}

	path := filepath.Join(r.dir, job.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.fail(job, fmt.Errorf("write export file: %w", err))
		return
	}

	r.metrics.IncExportJob(string(job.Format), "succeeded")
	r.logger.Info("export job finished",
		"job_id", job.ID,
		"format", job.Format,
		"entries", len(entries),
		"file", job.Filename,
		"duration", time.Since(started),
	)
}

// fetchAll pages through the store until every matching entry is collected.
func (r *Runner) fetchAll(ctx context.Context, filters audit.ListFilters) ([]audit.Entry, error) {
	filters.Page = 1
	filters.Limit = fetchLimit
	if err := filters.Normalize(); err != nil {
		return nil, err
	}

	var all []audit.Entry
	for {
		page, total, err := r.store.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			return all, nil
		}
		filters.Page++
	}
}

func (r *Runner) fail(job Job, err error) {
	r.metrics.IncExportJob(string(job.Format), "failed")
	r.logger.Error("export job failed",
		"job_id", job.ID,
		"format", job.Format,
		"error", err,
	)
}
