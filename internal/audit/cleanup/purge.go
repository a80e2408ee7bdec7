// Package cleanup implements the retention engine: a scheduled purge of
// audit entries past their per-action retention window and of export files
// past their per-extension window.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"offboard/internal/audit"
	"offboard/internal/platform/metrics"
)

// FileRetention maps an export file extension (without dot) to how long the
// file is kept, judged by modification time. Files with extensions outside
// this map are never touched.
var FileRetention = map[string]time.Duration{
	"csv":   30 * 24 * time.Hour,
	"xlsx":  30 * 24 * time.Hour,
	"jsonl": 60 * 24 * time.Hour,
	"pdf":   60 * 24 * time.Hour,
}

// Purger deletes expired audit entries and export files.
type Purger struct {
	store     audit.Store
	exportDir string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewPurger(store audit.Store, exportDir string, logger *slog.Logger, m *metrics.Metrics) *Purger {
	return &Purger{
		store:     store,
		exportDir: exportDir,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Run executes one full retention pass and returns how many entries and
// files were removed. A failure purging one action kind or one file does not
// stop the rest; all failures are joined into the returned error.
func (p *Purger) Run(ctx context.Context) (entries, files int, err error) {
	started := p.now()

	entries, entriesErr := p.purgeEntries(ctx)
	files, filesErr := p.purgeFiles()

	p.metrics.AddPurged(entries, files)
	p.logger.InfoContext(ctx, "retention pass finished",
		"entries_deleted", entries,
		"files_deleted", files,
		"duration", time.Since(started),
	)
	return entries, files, errors.Join(entriesErr, filesErr)
}

func (p *Purger) purgeEntries(ctx context.Context) (int, error) {
	actions := make([]audit.Action, 0, len(audit.RetentionPolicy))
	for action := range audit.RetentionPolicy {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	total := 0
	var errs []error
	for _, action := range actions {
		maxAge, _ := audit.MaxAge(action)
		cutoff := p.now().UTC().Add(-maxAge)

		n, err := p.store.DeleteOlderThan(ctx, action, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("purge %s: %w", action, err))
			continue
		}
		if n > 0 {
			p.logger.DebugContext(ctx, "purged audit entries",
				"action", action,
				"deleted", n,
				"cutoff", cutoff,
			)
		}
		total += n
	}
	return total, errors.Join(errs...)
}

func (p *Purger) purgeFiles() (int, error) {
	dirEntries, err := os.ReadDir(p.exportDir)
	if err != nil {
		return 0, fmt.Errorf("read export dir: %w", err)
	}

	deleted := 0
	var errs []error
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
		maxAge, ok := FileRetention[ext]
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("stat %s: %w", entry.Name(), err))
			continue
		}
		if p.now().Sub(info.ModTime()) <= maxAge {
			continue
		}

		path := filepath.Join(p.exportDir, entry.Name())
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", entry.Name(), err))
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
