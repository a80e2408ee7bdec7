package offboarding

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists offboarding records and their revoked-access rows.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS offboarding_records (
	id UUID PRIMARY KEY,
	actor_id UUID,
	username TEXT NOT NULL,
	registration TEXT NOT NULL,
	performed_by TEXT NOT NULL,
	offboarded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS revoked_accesses (
	id BIGSERIAL PRIMARY KEY,
	offboarding_id UUID NOT NULL REFERENCES offboarding_records (id) ON DELETE CASCADE,
	system_name TEXT NOT NULL,
	revoked_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_offboarding_records_registration ON offboarding_records (registration);
CREATE INDEX IF NOT EXISTS idx_offboarding_records_offboarded_at ON offboarding_records (offboarded_at DESC);
CREATE INDEX IF NOT EXISTS idx_revoked_accesses_offboarding_id ON revoked_accesses (offboarding_id);
`

// EnsureSchema applies the table definitions.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure offboarding schema: %w", err)
	}
	return nil
}

// Save inserts the record and its revoked systems in one transaction.
func (s *PostgresStore) Save(ctx context.Context, record Record) (Record, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.OffboardedAt.IsZero() {
		record.OffboardedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin offboarding tx: %w", err)
	}
	defer tx.Rollback()

	var actorID any
	if record.ActorID != nil {
		actorID = *record.ActorID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO offboarding_records (id, actor_id, username, registration, performed_by, offboarded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, actorID, record.Username, record.Registration, record.PerformedBy, record.OffboardedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert offboarding record: %w", err)
	}

	for _, system := range record.RevokedSystems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO revoked_accesses (offboarding_id, system_name, revoked_at)
			VALUES ($1, $2, $3)
		`, record.ID, system, record.OffboardedAt)
		if err != nil {
			return Record{}, fmt.Errorf("insert revoked access: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit offboarding tx: %w", err)
	}
	return record, nil
}

// History returns records newest first plus the unpaginated total. Filters
// must already be normalized.
func (s *PostgresStore) History(ctx context.Context, f HistoryFilters) ([]Record, int, error) {
	where := ""
	args := []any{}
	if f.Registration != "" {
		where = " WHERE registration = $1"
		args = append(args, f.Registration)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM offboarding_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offboarding records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, actor_id, username, registration, performed_by, offboarded_at
		FROM offboarding_records%s
		ORDER BY offboarded_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query offboarding records: %w", err)
	}
	defer rows.Close()

	var records []Record
	var ids []uuid.UUID
	for rows.Next() {
		var (
			record  Record
			actorID *uuid.UUID
		)
		if err := rows.Scan(&record.ID, &actorID, &record.Username, &record.Registration, &record.PerformedBy, &record.OffboardedAt); err != nil {
			return nil, 0, fmt.Errorf("scan offboarding record: %w", err)
		}
		record.ActorID = actorID
		records = append(records, record)
		ids = append(ids, record.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate offboarding records: %w", err)
	}

	if len(ids) > 0 {
		if err := s.attachRevoked(ctx, records, ids); err != nil {
			return nil, 0, err
		}
	}
	return records, total, nil
}

func (s *PostgresStore) attachRevoked(ctx context.Context, records []Record, ids []uuid.UUID) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT offboarding_id, system_name
		FROM revoked_accesses
		WHERE offboarding_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query revoked accesses: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID][]string)
	for rows.Next() {
		var (
			id     uuid.UUID
			system string
		)
		if err := rows.Scan(&id, &system); err != nil {
			return fmt.Errorf("scan revoked access: %w", err)
		}
		byID[id] = append(byID[id], system)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate revoked accesses: %w", err)
	}

	for i := range records {
		records[i].RevokedSystems = byID[records[i].ID]
	}
	return nil
}
