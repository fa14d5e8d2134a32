package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/server/config"
	"github.com/daybook-app/daybook/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newEntryService(t *testing.T, minEntryDate string) (*EntryService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{MinEntryDate: minEntryDate}
	svc, err := NewEntryService(db, repomanager.NewPostgresRepositoryManager(), cfg, testLogger())
	require.NoError(t, err)
	return svc, mock, db
}

func entryColumns() []string {
	return []string{"id", "user_id", "entry_date", "person", "grace", "gratitude", "created_at", "updated_at"}
}

func candidate(date string, ts int64, person string) journal.Candidate {
	return journal.Candidate{
		EntryDate: date,
		Person:    journal.StringPtr(person),
		UpdatedAt: &ts,
	}
}

// expectApply queues the transaction for one merge application: the locked
// read (returning storedRows) and, when write is true, the upsert exec.
func expectApply(mock sqlmock.Sqlmock, storedRows *sqlmock.Rows, write bool) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM entries WHERE .* FOR UPDATE$`).WillReturnRows(storedRows)
	if write {
		mock.ExpectExec(`INSERT INTO entries .* ON CONFLICT \(user_id, entry_date\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

func TestNewEntryService_RejectsBadFloor(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewEntryService(db, repomanager.NewPostgresRepositoryManager(), &config.Config{MinEntryDate: "nope"}, testLogger())
	assert.Error(t, err)
}

func TestUpsert_CreatesWhenAbsent(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	expectApply(mock, sqlmock.NewRows(entryColumns()), true)

	outcome, entry, verr, err := svc.Upsert(context.Background(), "u1", candidate("2026-01-02", 1000, "A"))
	require.NoError(t, err)
	require.Nil(t, verr)
	assert.Equal(t, journal.OutcomeCreated, outcome)
	require.NotNil(t, entry)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, int64(1000), entry.CreatedAt)
	assert.Equal(t, int64(1000), entry.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_StaleIncomingIsNoOpWithoutWrite(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	stored := sqlmock.NewRows(entryColumns()).
		AddRow("e1", "u1", "2026-01-02", "B", nil, nil, int64(500), int64(2000))
	expectApply(mock, stored, false)

	outcome, entry, verr, err := svc.Upsert(context.Background(), "u1", candidate("2026-01-02", 1000, "A"))
	require.NoError(t, err)
	require.Nil(t, verr)
	assert.Equal(t, journal.OutcomeNoOp, outcome)
	assert.Equal(t, int64(2000), entry.UpdatedAt)
	assert.Equal(t, "B", *entry.Person)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_EqualTimestampIsNoOp(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	stored := sqlmock.NewRows(entryColumns()).
		AddRow("e1", "u1", "2026-01-02", "B", nil, nil, int64(500), int64(1000))
	expectApply(mock, stored, false)

	outcome, entry, _, err := svc.Upsert(context.Background(), "u1", candidate("2026-01-02", 1000, "A"))
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeNoOp, outcome)
	assert.Equal(t, "B", *entry.Person)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_NewerIncomingOverwritesWholeRecord(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	stored := sqlmock.NewRows(entryColumns()).
		AddRow("e1", "u1", "2026-01-02", "B", "old grace", "old gratitude", int64(500), int64(500))
	expectApply(mock, stored, true)

	outcome, entry, _, err := svc.Upsert(context.Background(), "u1", candidate("2026-01-02", 1000, "A"))
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeUpdated, outcome)
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, "A", *entry.Person)
	assert.Nil(t, entry.Grace)
	assert.Nil(t, entry.Gratitude)
	assert.Equal(t, int64(500), entry.CreatedAt)
	assert.Equal(t, int64(1000), entry.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ValidationFailureSkipsStore(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	_, _, verr, err := svc.Upsert(context.Background(), "u1", journal.Candidate{EntryDate: "bad"})
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "entry_date")
	assert.Contains(t, verr.Fields, "updated_at")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPush_MixedBatchIsolatesRejects(t *testing.T) {
	svc, mock, _ := newEntryService(t, "2026-01-01")

	// Only the second item reaches the store.
	expectApply(mock, sqlmock.NewRows(entryColumns()), true)

	results, err := svc.Push(context.Background(), "u1", "dev-1", []journal.Candidate{
		candidate("2025-12-31", 1000, "too old"),
		candidate("2026-01-01", 1000, "valid"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "2025-12-31", results[0].EntryDate)
	require.NotNil(t, results[0].Rejected)
	assert.Equal(t,
		"The entry date field must be a date after or equal to 2026-01-01.",
		results[0].Rejected.Fields["entry_date"][0])

	assert.Equal(t, "2026-01-01", results[1].EntryDate)
	assert.Nil(t, results[1].Rejected)
	assert.Equal(t, journal.OutcomeCreated, results[1].Outcome)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPush_ReplayIsIdempotent(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	// First pass: absent row, genuine write.
	expectApply(mock, sqlmock.NewRows(entryColumns()), true)
	// Replay: the stored row now carries the same timestamp; no write.
	stored := sqlmock.NewRows(entryColumns()).
		AddRow("e1", "u1", "2026-01-02", "A", nil, nil, int64(1000), int64(1000))
	expectApply(mock, stored, false)

	batch := []journal.Candidate{candidate("2026-01-02", 1000, "A")}

	first, err := svc.Push(context.Background(), "u1", "dev-1", batch)
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeCreated, first[0].Outcome)

	second, err := svc.Push(context.Background(), "u1", "dev-1", batch)
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeNoOp, second[0].Outcome)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPush_ResultsPreserveInputOrder(t *testing.T) {
	svc, mock, _ := newEntryService(t, "")

	expectApply(mock, sqlmock.NewRows(entryColumns()), true)
	expectApply(mock, sqlmock.NewRows(entryColumns()), true)

	results, err := svc.Push(context.Background(), "u1", "dev-1", []journal.Candidate{
		candidate("2026-01-05", 1000, "later date first"),
		candidate("2026-01-02", 1000, "earlier date second"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "2026-01-05", results[0].EntryDate)
	assert.Equal(t, "2026-01-02", results[1].EntryDate)
}
