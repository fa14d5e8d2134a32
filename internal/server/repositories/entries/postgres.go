// Package entries provides the PostgreSQL-backed repository for
// authoritative journal entries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, user_id, entry_date, person, grace, gratitude, created_at, updated_at`

func (r *PostgresRepository) getByDate(ctx context.Context, userID string, date journal.Date, forUpdate bool) (*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries WHERE user_id = $1 AND entry_date = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	row := r.db.QueryRowContext(ctx, query, userID, date)

	e := &models.Entry{}
	err := row.Scan(&e.ID, &e.UserID, &e.EntryDate, &e.Person, &e.Grace, &e.Gratitude, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

// GetByDate returns the entry for (userID, date) or (nil, nil) when absent.
func (r *PostgresRepository) GetByDate(ctx context.Context, userID string, date journal.Date) (*models.Entry, error) {
	return r.getByDate(ctx, userID, date, false)
}

// GetByDateForUpdate locks the row for the duration of the surrounding
// transaction before returning it.
func (r *PostgresRepository) GetByDateForUpdate(ctx context.Context, userID string, date journal.Date) (*models.Entry, error) {
	return r.getByDate(ctx, userID, date, true)
}

// Upsert inserts the entry or, on conflict with (user_id, entry_date),
// replaces its content fields and logical timestamp in full.
func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, entry_date, person, grace, gratitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, entry_date)
		DO UPDATE SET
			person = EXCLUDED.person,
			grace = EXCLUDED.grace,
			gratitude = EXCLUDED.gratitude,
			updated_at = EXCLUDED.updated_at;
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.EntryDate, entry.Person, entry.Grace, entry.Gratitude,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
