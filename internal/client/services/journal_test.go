package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/migrations"
	"github.com/daybook-app/daybook/internal/client/models"
	"github.com/daybook-app/daybook/internal/client/repositories/metadata"
	"github.com/daybook-app/daybook/internal/client/repositories/records"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fixedClock struct{ now int64 }

func (c fixedClock) NowMilli() int64 { return c.now }

// fakeClient scripts the server side of the reconciliation loop.
type fakeClient struct {
	token string

	pingErr error

	entry    *api.Entry
	entryErr error

	upsertResp *api.UpsertResponse
	upsertErr  error
	upserted   []api.EntryPayload

	pushResults  []api.PushResult
	pushErr      error
	pushDeviceID string
	pushed       [][]api.EntryPayload
}

func (f *fakeClient) SetAccessToken(token string) { f.token = token }
func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Push(ctx context.Context, deviceID string, entries []api.EntryPayload) ([]api.PushResult, error) {
	f.pushDeviceID = deviceID
	f.pushed = append(f.pushed, entries)
	return f.pushResults, f.pushErr
}

func (f *fakeClient) Upsert(ctx context.Context, entry api.EntryPayload) (*api.UpsertResponse, error) {
	f.upserted = append(f.upserted, entry)
	return f.upsertResp, f.upsertErr
}

func (f *fakeClient) GetEntry(ctx context.Context, date journal.Date) (*api.Entry, error) {
	return f.entry, f.entryErr
}

func (f *fakeClient) GetFlashbacks(ctx context.Context, date journal.Date) (*api.FlashbacksResponse, error) {
	return &api.FlashbacksResponse{OK: true}, nil
}

func (f *fakeClient) RequestMagicLink(ctx context.Context, email string) error { return nil }

func (f *fakeClient) ConsumeMagicLink(ctx context.Context, token string) (string, error) {
	return "fresh-access-token", nil
}

type fixture struct {
	svc     *JournalService
	client  *fakeClient
	records records.Repository
	meta    metadata.Repository
}

func newFixture(t *testing.T, now int64) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))

	recordsRepo := records.NewSQLiteRepository(db)
	metaRepo := metadata.NewSQLiteRepository(db)
	fc := &fakeClient{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &fixture{
		svc:     NewJournalService(fc, recordsRepo, metaRepo, fixedClock{now: now}, logger),
		client:  fc,
		records: recordsRepo,
		meta:    metaRepo,
	}
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, f.meta.Set(context.Background(), metadata.KeyAccessToken, []byte("stored-token")))
}

func TestOpenNoEntryAnywhere(t *testing.T) {
	f := newFixture(t, 5000)

	view, err := f.svc.Open(context.Background(), journal.MustParseDate("2026-03-01"))
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestOpenLocalOnlyOffline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5000)
	date := journal.MustParseDate("2026-03-01")

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: date,
		Person:    journal.StringPtr("Alice"),
		UpdatedAt: 1000,
	}))

	view, err := f.svc.Open(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Alice", *view.Person)
	assert.False(t, view.Synced)
}

func TestOpenLocalNewerThanServer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5000)
	f.signIn(t)
	date := journal.MustParseDate("2026-03-01")

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: date,
		Person:    journal.StringPtr("local person"),
		UpdatedAt: 100,
	}))
	f.client.entry = &api.Entry{
		EntryDate: "2026-03-01",
		Person:    journal.StringPtr("server person"),
		UpdatedAt: 50,
	}

	view, err := f.svc.Open(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "local person", *view.Person)
	assert.False(t, view.Synced)

	// The resolved view is persisted and still awaits a push.
	unsynced, err := f.records.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestOpenServerWinsTie(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5000)
	f.signIn(t)
	date := journal.MustParseDate("2026-03-01")

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: date,
		Person:    journal.StringPtr("local person"),
		UpdatedAt: 100,
	}))
	f.client.entry = &api.Entry{
		EntryDate: "2026-03-01",
		Person:    journal.StringPtr("server person"),
		UpdatedAt: 100,
	}

	view, err := f.svc.Open(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "server person", *view.Person)
	assert.True(t, view.Synced)

	stored, err := f.records.GetByDate(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, stored.SyncedAt)
	assert.Equal(t, int64(5000), *stored.SyncedAt)
}

func TestOpenServerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5000)
	f.signIn(t)
	date := journal.MustParseDate("2026-03-01")

	f.client.entry = &api.Entry{
		EntryDate: "2026-03-01",
		Gratitude: journal.StringPtr("quiet evening"),
		UpdatedAt: 900,
	}

	view, err := f.svc.Open(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "quiet evening", *view.Gratitude)
	assert.True(t, view.Synced)

	// The fetched copy lands in the local store.
	stored, err := f.records.GetByDate(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(900), stored.UpdatedAt)
}

func TestOpenTransportFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5000)
	f.signIn(t)
	date := journal.MustParseDate("2026-03-01")

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: date,
		Person:    journal.StringPtr("Alice"),
		UpdatedAt: 1000,
	}))
	f.client.entryErr = common.ErrTransport

	view, err := f.svc.Open(ctx, date)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Alice", *view.Person)
}

func TestSaveOffline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7000)
	date := journal.MustParseDate("2026-03-01")

	view, err := f.svc.Save(ctx, date, Fields{Person: journal.StringPtr("Alice")})
	require.NoError(t, err)
	assert.False(t, view.Synced)
	assert.Equal(t, int64(7000), view.UpdatedAt)

	unsynced, err := f.records.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)

	// No token stored, so no network call was attempted.
	assert.Empty(t, f.client.upserted)

	count, err := f.svc.SaveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveOnlineMarksSynced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7000)
	f.signIn(t)
	date := journal.MustParseDate("2026-03-01")

	f.client.upsertResp = &api.UpsertResponse{
		OK:     true,
		Status: api.StatusUpserted,
		Entry:  api.EntryRef{EntryDate: "2026-03-01", UpdatedAt: 7000},
	}

	view, err := f.svc.Save(ctx, date, Fields{Gratitude: journal.StringPtr("warm tea")})
	require.NoError(t, err)
	assert.True(t, view.Synced)

	require.Len(t, f.client.upserted, 1)
	require.NotNil(t, f.client.upserted[0].UpdatedAt)
	assert.Equal(t, int64(7000), *f.client.upserted[0].UpdatedAt)

	unsynced, err := f.records.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func TestSaveOnlineTransportFailureStaysUnsynced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7000)
	f.signIn(t)
	date := journal.MustParseDate("2026-03-01")

	f.client.upsertErr = common.ErrTransport

	view, err := f.svc.Save(ctx, date, Fields{Person: journal.StringPtr("Alice")})
	require.NoError(t, err)
	assert.False(t, view.Synced)

	unsynced, err := f.records.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7000)
	date := journal.MustParseDate("2026-03-01")

	_, err := f.svc.Save(ctx, date, Fields{Person: journal.StringPtr("Alice"), Grace: journal.StringPtr("rain held off")})
	require.NoError(t, err)

	view, err := f.svc.Save(ctx, date, Fields{Person: journal.StringPtr("Bob")})
	require.NoError(t, err)

	assert.Equal(t, "Bob", *view.Person)
	assert.Nil(t, view.Grace)
}

func TestPushUnsyncedNothingPending(t *testing.T) {
	f := newFixture(t, 7000)

	summary, err := f.svc.PushUnsynced(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary)

	// Empty store means not even a network call.
	assert.Empty(t, f.client.pushed)
}

func TestPushUnsyncedRequiresSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 7000)

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: journal.MustParseDate("2026-03-01"),
		UpdatedAt: 1000,
	}))

	_, err := f.svc.PushUnsynced(ctx)
	assert.ErrorIs(t, err, common.ErrIdentityRequired)
}

func TestPushUnsyncedMixedResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)
	f.signIn(t)

	d1 := journal.MustParseDate("2026-03-01")
	d2 := journal.MustParseDate("2026-03-02")
	d3 := journal.MustParseDate("2026-03-03")
	for _, d := range []journal.Date{d1, d2, d3} {
		require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{EntryDate: d, UpdatedAt: 1000}))
	}

	f.client.pushResults = []api.PushResult{
		{EntryDate: "2026-03-03", Status: api.StatusUpserted},
		{EntryDate: "2026-03-02", Status: api.StatusSkipped},
		{EntryDate: "2026-03-01", Status: api.StatusRejected, Errors: map[string][]string{"entry_date": {"too early"}}},
	}

	summary, err := f.svc.PushUnsynced(ctx)
	require.NoError(t, err)

	assert.Equal(t, PushSummary{Pushed: 1, Skipped: 1, Rejected: 1}, summary)

	// Rejected stays unsynced and is retried next pass.
	unsynced, err := f.records.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.True(t, unsynced[0].EntryDate.Equal(d1))

	require.Len(t, f.client.pushed, 1)
	assert.Len(t, f.client.pushed[0], 3)
	assert.NotEmpty(t, f.client.pushDeviceID)
}

func TestPushUnsyncedTransportFailureMarksNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)
	f.signIn(t)

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: journal.MustParseDate("2026-03-01"),
		UpdatedAt: 1000,
	}))
	f.client.pushErr = common.ErrTransport

	_, err := f.svc.PushUnsynced(ctx)
	assert.ErrorIs(t, err, common.ErrTransport)

	unsynced, err := f.records.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestFlashbacks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)
	today := journal.MustParseDate("2026-03-08")

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: journal.MustParseDate("2026-03-01"),
		Person:    journal.StringPtr("Alice"),
		UpdatedAt: 1000,
	}))
	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: journal.MustParseDate("2025-03-08"),
		Gratitude: journal.StringPtr("spring sun"),
		UpdatedAt: 1000,
	}))

	fb, err := f.svc.Flashbacks(ctx, today)
	require.NoError(t, err)

	require.NotNil(t, fb.WeekAgo)
	assert.Equal(t, "Alice", fb.WeekAgo.Snippet)
	require.NotNil(t, fb.YearAgo)
	assert.Equal(t, "spring sun", fb.YearAgo.Snippet)
}

func TestFlashbacksDropEmptyContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)
	today := journal.MustParseDate("2026-03-08")

	require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
		EntryDate: journal.MustParseDate("2026-03-01"),
		UpdatedAt: 1000,
	}))

	fb, err := f.svc.Flashbacks(ctx, today)
	require.NoError(t, err)
	assert.Nil(t, fb.WeekAgo)
	assert.Nil(t, fb.YearAgo)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)

	for _, d := range []string{"2026-03-01", "2026-03-05", "2026-03-03"} {
		require.NoError(t, f.records.Upsert(ctx, &models.LocalRecord{
			EntryDate: journal.MustParseDate(d),
			UpdatedAt: 1000,
		}))
	}

	views, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "2026-03-05", views[0].Date.String())
	assert.Equal(t, "2026-03-01", views[2].Date.String())
}

func TestCompleteSignInPersistsToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)

	require.NoError(t, f.svc.CompleteSignIn(ctx, "id.secret"))

	stored, err := f.meta.Get(ctx, metadata.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh-access-token"), stored)
	assert.Equal(t, "fresh-access-token", f.client.token)
}

func TestDeviceIDStable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9000)

	first, err := f.svc.DeviceID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := f.svc.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
