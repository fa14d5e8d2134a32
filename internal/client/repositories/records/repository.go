// Package records implements the durable device-local store of journal
// records, keyed uniquely by entry date.
package records

import (
	"context"

	"github.com/daybook-app/daybook/internal/client/models"
	"github.com/daybook-app/daybook/internal/journal"
)

// Repository describes the local record store. Implementations are backed
// by a per-device SQLite database.
type Repository interface {
	// GetByDate returns the record for a date, or nil when none exists.
	GetByDate(ctx context.Context, date journal.Date) (*models.LocalRecord, error)

	// Upsert stores a record as a whole-record replace. The record's date is
	// taken from EntryDate, falling back to ServerEntryDate; a record with
	// neither is rejected with a *journal.ValidationError. The local id of
	// an existing record for the date is reused, otherwise a new one is
	// minted and written back to the record.
	Upsert(ctx context.Context, record *models.LocalRecord) error

	// ListAll returns every record, most recent entry date first.
	ListAll(ctx context.Context) ([]models.LocalRecord, error)

	// ListUnsynced returns records whose synced_at is absent.
	ListUnsynced(ctx context.Context) ([]models.LocalRecord, error)

	// MarkSynced sets synced_at to now and server_entry_date to the
	// record's own entry date, for each given date present in the store.
	// Absent dates are silently ignored.
	MarkSynced(ctx context.Context, dates []journal.Date, now int64) error
}
