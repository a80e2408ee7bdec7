package audit

import (
	"context"
	"time"

	dErrors "offboard/pkg/domainerrors"
)

// maxQuerySpan bounds the inclusive date range a single query may cover.
const maxQuerySpan = 90 * 24 * time.Hour

// defaultLimit is applied when a caller omits the page size.
const defaultLimit = 100

// maxLimit caps the page size regardless of what the caller asks for.
const maxLimit = 500

// ListFilters narrows a query over the audit trail. Zero values mean "no
// filter" for that field.
type ListFilters struct {
	Action   Action
	Username string
	Status   Status
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// Normalize validates the filter combination and applies defaults:
// date_to must not precede date_from, the inclusive span must not exceed 90
// days, and a lone date_from implies date_to = date_from + 1 day. Violations
// are validation errors, never store errors.
func (f *ListFilters) Normalize() error {
	if f.DateFrom != nil && f.DateTo != nil {
		if f.DateTo.Before(*f.DateFrom) {
			return dErrors.New(dErrors.CodeValidation, "date_to must be after date_from")
		}
		if f.DateTo.Sub(*f.DateFrom) > maxQuerySpan {
			return dErrors.New(dErrors.CodeValidation, "date range cannot exceed 90 days")
		}
	}
	if f.DateFrom != nil && f.DateTo == nil {
		to := f.DateFrom.Add(24 * time.Hour)
		f.DateTo = &to
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return nil
}

// Pages computes the page count for a result total under these filters.
func (f ListFilters) Pages(total int) int {
	if f.Limit < 1 {
		return 1
	}
	pages := (total + f.Limit - 1) / f.Limit
	if pages < 1 {
		return 1
	}
	return pages
}

// Store is the persistence contract for audit entries. Append assigns the
// entry ID and server timestamp; List returns entries newest first plus the
// unpaginated total; DeleteOlderThan removes entries of one action kind
// below the cutoff and reports how many went away.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filters ListFilters) ([]Entry, int, error)
	DeleteOlderThan(ctx context.Context, action Action, cutoff time.Time) (int, error)
}
