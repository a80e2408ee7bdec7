package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostgresStore implements Store on a plain database/sql handle.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema creates the audit table. Deployments with external migration
// tooling can ignore this and own the DDL themselves.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	action TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT,
	actor_id UUID,
	actor_username TEXT,
	target_username TEXT,
	target_registration TEXT,
	resource TEXT,
	ip_address TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_action_created_at ON audit_logs (action, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC);
`

// EnsureSchema applies the table definition.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append persists an entry. The store assigns id and created_at.
func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_logs (
			action, status, message, actor_id, actor_username,
			target_username, target_registration, resource,
			ip_address, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var actorID any
	if entry.ActorID != nil {
		actorID = *entry.ActorID
	}

	_, err := s.db.ExecContext(ctx, query,
		string(entry.Action),
		string(entry.Status),
		nullIfEmpty(entry.Message),
		actorID,
		nullIfEmpty(entry.ActorUsername),
		nullIfEmpty(entry.TargetUsername),
		nullIfEmpty(entry.TargetRegistration),
		nullIfEmpty(entry.Resource),
		nullIfEmpty(entry.IPAddress),
		nullIfEmpty(entry.UserAgent),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns matching entries newest first plus the unpaginated total.
// Filters must already be normalized.
func (s *PostgresStore) List(ctx context.Context, f ListFilters) ([]Entry, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Action != "" {
		conds = append(conds, "action = "+arg(string(f.Action)))
	}
	if f.Username != "" {
		conds = append(conds, "actor_username = "+arg(f.Username))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(string(f.Status)))
	}
	if f.DateFrom != nil {
		conds = append(conds, "created_at >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "created_at <= "+arg(*f.DateTo))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := `
		SELECT id, action, status, message, actor_id, actor_username,
			   target_username, target_registration, resource,
			   ip_address, user_agent, created_at
		FROM audit_logs` + where + `
		ORDER BY created_at DESC
		LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg((f.Page-1)*f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteOlderThan removes entries of one action kind older than cutoff.
func (s *PostgresStore) DeleteOlderThan(ctx context.Context, action Action, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_logs WHERE action = $1 AND created_at < $2",
		string(action), cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge %s entries: %w", action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge %s rows affected: %w", action, err)
	}
	return int(n), nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var (
			entry      Entry
			action     string
			status     string
			message    sql.NullString
			actorID    *uuid.UUID
			actorName  sql.NullString
			targetName sql.NullString
			targetReg  sql.NullString
			resource   sql.NullString
			ipAddress  sql.NullString
			userAgent  sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&action,
			&status,
			&message,
			&actorID,
			&actorName,
			&targetName,
			&targetReg,
			&resource,
			&ipAddress,
			&userAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entry.Action = Action(action)
		entry.Status = Status(status)
		entry.Message = message.String
		entry.ActorID = actorID
		entry.ActorUsername = actorName.String
		entry.TargetUsername = targetName.String
		entry.TargetRegistration = targetReg.String
		entry.Resource = resource.String
		entry.IPAddress = ipAddress.String
		entry.UserAgent = userAgent.String

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
