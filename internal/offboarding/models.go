// Package offboarding coordinates account deactivation across the external
// systems: it probes where the target still has access, runs one isolated
// deactivation step per system, audits every attempt, and keeps a permanent
// record of what was revoked.
package offboarding

import (
	"time"

	"github.com/google/uuid"
)

// Probe map keys and the display names written to the revoked list. The
// access-control network is probed as "Turnstiles" but reported to users
// under its badge-system name "Acesso".
const (
	SystemDirectory        = "Rede"
	SystemHR               = "InTouch"
	SystemTurnstiles       = "Turnstiles"
	SystemTurnstileDisplay = "Acesso"
)

// Record is the permanent bookkeeping row for one offboarding run that
// revoked at least one system.
type Record struct {
	ID             uuid.UUID
	ActorID        *uuid.UUID
	Username       string
	Registration   string
	PerformedBy    string
	OffboardedAt   time.Time
	RevokedSystems []string
}

// Result is what the caller gets back. Success reports that orchestration
// ran to completion; Details lists the systems actually revoked, which may
// be empty.
type Result struct {
	Success bool     `json:"success"`
	Details []string `json:"details"`
}

// HistoryFilters narrows the offboarding history listing.
type HistoryFilters struct {
	Registration string
	Page         int
	Limit        int
}

// Normalize applies paging defaults.
func (f *HistoryFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// Pages computes the page count for a result total under these filters.
func (f HistoryFilters) Pages(total int) int {
	if f.Limit < 1 {
		return 1
	}
	pages := (total + f.Limit - 1) / f.Limit
	if pages < 1 {
		return 1
	}
	return pages
}
