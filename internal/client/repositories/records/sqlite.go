package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daybook-app/daybook/internal/client/models"
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `local_id, entry_date, person, grace, gratitude, updated_at, synced_at, server_entry_date`

func scanRecord(row interface{ Scan(...any) error }) (*models.LocalRecord, error) {
	r := &models.LocalRecord{}
	var serverDate sql.NullString
	err := row.Scan(&r.LocalID, &r.EntryDate, &r.Person, &r.Grace, &r.Gratitude,
		&r.UpdatedAt, &r.SyncedAt, &serverDate)
	if err != nil {
		return nil, err
	}
	if serverDate.Valid {
		d, err := journal.ParseDate(serverDate.String)
		if err != nil {
			return nil, err
		}
		r.ServerEntryDate = &d
	}
	return r, nil
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, date journal.Date) (*models.LocalRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM records WHERE entry_date = ?`
	row := r.db.QueryRowContext(ctx, query, date)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// Upsert writes the record as a whole-record replace under its resolved
// date. The existing row's local id is reused so the id stays stable across
// rewrites of the same date.
func (r *SQLiteRepository) Upsert(ctx context.Context, record *models.LocalRecord) error {
	date := record.EntryDate
	if date.IsZero() && record.ServerEntryDate != nil {
		date = *record.ServerEntryDate
	}
	if date.IsZero() {
		verr := journal.NewValidationError()
		verr.Add("entry_date", "The entry date field is required.")
		return verr
	}
	record.EntryDate = date

	existing, err := r.GetByDate(ctx, date)
	if err != nil {
		return err
	}
	if existing != nil {
		record.LocalID = existing.LocalID
	} else if record.LocalID == "" {
		record.LocalID = uuid.NewString()
	}

	var serverDate *string
	if record.ServerEntryDate != nil {
		s := record.ServerEntryDate.String()
		serverDate = &s
	}

	query := `INSERT INTO records (local_id, entry_date, person, grace, gratitude, updated_at, synced_at, server_entry_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entry_date) DO UPDATE SET
			person = excluded.person,
			grace = excluded.grace,
			gratitude = excluded.gratitude,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at,
			server_entry_date = excluded.server_entry_date`
	_, err = r.db.ExecContext(ctx, query,
		record.LocalID, record.EntryDate, record.Person, record.Grace, record.Gratitude,
		record.UpdatedAt, record.SyncedAt, serverDate)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]models.LocalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.LocalRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.LocalRecord, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM records ORDER BY entry_date DESC`)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.LocalRecord, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM records WHERE synced_at IS NULL ORDER BY entry_date DESC`)
}

// MarkSynced flags the given dates as acknowledged. Dates without a row are
// skipped without error since the reconciliation loop may race with the
// store.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, dates []journal.Date, now int64) error {
	query := `UPDATE records SET synced_at = ?, server_entry_date = entry_date WHERE entry_date = ?`
	for _, date := range dates {
		if _, err := r.db.ExecContext(ctx, query, now, date); err != nil {
			return fmt.Errorf("failed to mark %s synced: %w", date, err)
		}
	}
	return nil
}
