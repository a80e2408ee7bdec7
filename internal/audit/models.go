// Package audit implements the append-only audit trail: the entry model,
// the store contract with filtered queries, the recorder used by domain
// logic, and the per-action retention policy.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of security-relevant action an entry records.
type Action string

const (
	ActionSystemLogin  Action = "system_login"
	ActionSystemLogout Action = "system_logout"
	ActionTokenRefresh Action = "token_refresh"

	ActionListUsers       Action = "list_users"
	ActionCreateUser      Action = "create_user"
	ActionUpdateUser      Action = "update_user"
	ActionReadCurrentUser Action = "read_current_user"

	ActionSearchDirectoryUser  Action = "search_ad_user"
	ActionDisableDirectoryUser Action = "disable_ad_user"

	ActionSearchHRUser  Action = "search_intouch_user"
	ActionDisableHRUser Action = "disable_intouch_user"

	ActionDisableTurnstileUser Action = "disable_turnstile_user"

	ActionViewAuditLogs   Action = "view_audit_logs"
	ActionExportAuditLogs Action = "export_audit_logs"

	ActionSystemStart Action = "system_start"
	ActionSystemStop  Action = "system_stop"
	ActionSystemError Action = "system_error"
)

// Status is the outcome recorded for an action.
type Status string

const (
	StatusSuccess         Status = "SUCCESS"
	StatusFailed          Status = "FAILED"
	StatusDenied          Status = "DENIED"
	StatusPartial         Status = "PARTIAL"
	StatusValidationError Status = "VALIDATION_ERROR"
)

// Entry is one immutable audit record. Entries are never updated; only the
// retention purge may delete them.
type Entry struct {
	ID                 int64
	Action             Action
	Status             Status
	Message            string
	ActorID            *uuid.UUID
	ActorUsername      string
	TargetUsername     string
	TargetRegistration string
	Resource           string
	IPAddress          string
	UserAgent          string
	CreatedAt          time.Time
}

// RetentionPolicy maps an action kind to its maximum age. Actions absent
// from the map are never purged by the retention engine.
var RetentionPolicy = map[Action]time.Duration{
	ActionExportAuditLogs:      180 * 24 * time.Hour,
	ActionSystemLogin:          90 * 24 * time.Hour,
	ActionSystemLogout:         90 * 24 * time.Hour,
	ActionCreateUser:           180 * 24 * time.Hour,
	ActionListUsers:            90 * 24 * time.Hour,
	ActionSearchDirectoryUser:  90 * 24 * time.Hour,
	ActionDisableDirectoryUser: 365 * 24 * time.Hour,
}

// MaxAge returns the retention window for an action and whether one exists.
func MaxAge(action Action) (time.Duration, bool) {
	d, ok := RetentionPolicy[action]
	return d, ok
}
