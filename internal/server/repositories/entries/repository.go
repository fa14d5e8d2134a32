package entries

import (
	"context"

	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/server/models"
)

// Repository describes storage operations for authoritative entries.
// Absent records are (nil, nil), never an error.
type Repository interface {
	// GetByDate returns the entry for (userID, date), if any.
	GetByDate(ctx context.Context, userID string, date journal.Date) (*models.Entry, error)

	// GetByDateForUpdate is GetByDate with a row lock, for use inside the
	// transaction that applies a merge decision. Reading and writing under
	// the lock makes compare-and-decide atomic per record.
	GetByDateForUpdate(ctx context.Context, userID string, date journal.Date) (*models.Entry, error)

	// Upsert writes the entry, replacing all content fields on conflict
	// with the (user_id, entry_date) uniqueness constraint.
	Upsert(ctx context.Context, entry *models.Entry) error
}
