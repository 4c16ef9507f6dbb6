package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresArchive stores submissions in the lead_submissions table.
type PostgresArchive struct {
	db execer
}

// NewPostgresArchive initializes an archive backed by a pgx pool (or any
// value with the same Exec method).
func NewPostgresArchive(db execer) *PostgresArchive {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresArchive{db: db}
}

// Save inserts a new row.
func (a *PostgresArchive) Save(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO lead_submissions (id, kind, reference, name, email, phone, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := a.db.Exec(ctx, query,
		rec.ID,
		string(rec.Kind),
		rec.Reference,
		rec.Name,
		rec.Email,
		rec.Phone,
		rec.Payload,
		rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

var _ Archive = (*PostgresArchive)(nil)
