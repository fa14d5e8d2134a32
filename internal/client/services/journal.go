// Package services drives the device-side reconciliation loop: it is the
// only code that touches both the local store and the sync server.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/client"
	"github.com/daybook-app/daybook/internal/client/models"
	"github.com/daybook-app/daybook/internal/client/repositories/metadata"
	"github.com/daybook-app/daybook/internal/client/repositories/records"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/timex"
	"github.com/google/uuid"
)

// EntryView is what the UI renders for one date: the reconciled content
// plus whether it still awaits a push.
type EntryView struct {
	Date      journal.Date
	Person    *string
	Grace     *string
	Gratitude *string
	UpdatedAt int64
	Synced    bool
}

// Fields is the writable journal content for one date.
type Fields struct {
	Person    *string
	Grace     *string
	Gratitude *string
}

// PushSummary reports one reconciliation pass over the unsynced records.
type PushSummary struct {
	Pushed   int
	Skipped  int
	Rejected int
}

// Flashback is a past entry surfaced alongside the date being viewed.
type Flashback struct {
	Date    journal.Date
	Snippet string
}

// Flashbacks carries the week-ago and year-ago glimpses; either may be nil.
type Flashbacks struct {
	WeekAgo *Flashback
	YearAgo *Flashback
}

// JournalService coordinates the local record store, the metadata store,
// and the sync client.
type JournalService struct {
	client  client.Client
	records records.Repository
	meta    metadata.Repository
	clock   timex.Clock
	logger  logging.Logger
}

func NewJournalService(c client.Client, recordsRepo records.Repository, metaRepo metadata.Repository, clock timex.Clock, logger logging.Logger) *JournalService {
	return &JournalService{
		client:  c,
		records: recordsRepo,
		meta:    metaRepo,
		clock:   clock,
		logger:  logger,
	}
}

// loadToken installs the stored access token on the client; false when the
// device has never signed in.
func (s *JournalService) loadToken(ctx context.Context) (bool, error) {
	token, err := s.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	if len(token) == 0 {
		return false, nil
	}
	s.client.SetAccessToken(string(token))
	return true, nil
}

// DeviceID returns the stable identifier for this device, minting and
// persisting one on first use.
func (s *JournalService) DeviceID(ctx context.Context) (string, error) {
	id, err := s.meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", err
	}
	if len(id) > 0 {
		return string(id), nil
	}

	fresh := uuid.NewString()
	if err := s.meta.Set(ctx, metadata.KeyDeviceID, []byte(fresh)); err != nil {
		return "", err
	}
	return fresh, nil
}

func viewFromRecord(r *models.LocalRecord) *EntryView {
	return &EntryView{
		Date:      r.EntryDate,
		Person:    r.Person,
		Grace:     r.Grace,
		Gratitude: r.Gratitude,
		UpdatedAt: r.UpdatedAt,
		Synced:    r.SyncedAt != nil,
	}
}

func serverVersion(e *api.Entry) *journal.Version {
	if e == nil {
		return nil
	}
	return &journal.Version{
		Person:    e.Person,
		Grace:     e.Grace,
		Gratitude: e.Gratitude,
		UpdatedAt: e.UpdatedAt,
	}
}

// Open reads the local and (when reachable and signed in) server copies for
// a date, reconciles them for display, persists the resolved view back so
// the synced marker stays accurate, and returns it. Nil means no entry
// exists on either side yet.
func (s *JournalService) Open(ctx context.Context, date journal.Date) (*EntryView, error) {
	local, err := s.records.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	authenticated, err := s.loadToken(ctx)
	if err != nil {
		return nil, err
	}

	var server *api.Entry
	if authenticated {
		server, err = s.client.GetEntry(ctx, date)
		if err != nil {
			if !errors.Is(err, common.ErrTransport) && !errors.Is(err, common.ErrUnauthorized) {
				return nil, err
			}
			// Offline or signed out mid-session: fall back to the local copy.
			s.logger.Debug(ctx, "server unreachable, using local copy", "date", date.String(), "reason", err.Error())
			server = nil
		}
	}

	var localVersion *journal.Version
	var localSyncedAt *int64
	if local != nil {
		lv := local.Version()
		localVersion = &lv
		localSyncedAt = local.SyncedAt
	}

	if localVersion == nil && server == nil {
		return nil, nil
	}

	view := journal.ReconcileDisplay(localVersion, localSyncedAt, serverVersion(server), s.clock.NowMilli())

	record := &models.LocalRecord{EntryDate: date, SyncedAt: view.SyncedAt}
	if local != nil {
		record.LocalID = local.LocalID
		record.ServerEntryDate = local.ServerEntryDate
	}
	if view.SyncedAt != nil {
		record.ServerEntryDate = &date
	}
	record.ApplyVersion(view.Version)

	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, err
	}

	return viewFromRecord(record), nil
}

// Save writes the given fields for a date: an optimistic local write
// stamped with the current clock and marked unsynced, then an immediate
// single-entry upsert when the server is reachable. Offline saves succeed
// locally and are picked up by the next PushUnsynced pass.
func (s *JournalService) Save(ctx context.Context, date journal.Date, fields Fields) (*EntryView, error) {
	now := s.clock.NowMilli()

	record := &models.LocalRecord{
		EntryDate: date,
		Person:    fields.Person,
		Grace:     fields.Grace,
		Gratitude: fields.Gratitude,
		UpdatedAt: now,
	}
	if existing, err := s.records.GetByDate(ctx, date); err != nil {
		return nil, err
	} else if existing != nil {
		record.LocalID = existing.LocalID
		record.ServerEntryDate = existing.ServerEntryDate
	}

	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, err
	}

	if err := s.IncrementSaveCount(ctx); err != nil {
		return nil, err
	}

	authenticated, err := s.loadToken(ctx)
	if err != nil {
		return nil, err
	}
	if authenticated {
		resp, err := s.client.Upsert(ctx, api.EntryPayload{
			EntryDate: date.String(),
			Person:    fields.Person,
			Grace:     fields.Grace,
			Gratitude: fields.Gratitude,
			UpdatedAt: &now,
		})
		switch {
		case err == nil && (resp.Status == api.StatusUpserted || resp.Status == api.StatusSkipped):
			if err := s.records.MarkSynced(ctx, []journal.Date{date}, s.clock.NowMilli()); err != nil {
				return nil, err
			}
			record.SyncedAt = &now
		case err != nil && (errors.Is(err, common.ErrTransport) || errors.Is(err, common.ErrUnauthorized)):
			s.logger.Debug(ctx, "save not pushed, will retry on next sync", "date", date.String(), "reason", err.Error())
		case err != nil:
			return nil, err
		}
	}

	return viewFromRecord(record), nil
}

// PushUnsynced sends every unsynced record as one batch. With nothing to
// push it returns immediately without a network call. Items reported
// upserted or skipped are marked synced; rejected items stay unsynced and
// are retried on the next pass.
func (s *JournalService) PushUnsynced(ctx context.Context) (PushSummary, error) {
	var summary PushSummary

	pending, err := s.records.ListUnsynced(ctx)
	if err != nil {
		return summary, err
	}
	if len(pending) == 0 {
		return summary, nil
	}

	authenticated, err := s.loadToken(ctx)
	if err != nil {
		return summary, err
	}
	if !authenticated {
		return summary, common.ErrIdentityRequired
	}

	deviceID, err := s.DeviceID(ctx)
	if err != nil {
		return summary, err
	}

	payload := make([]api.EntryPayload, 0, len(pending))
	for i := range pending {
		r := &pending[i]
		ts := r.UpdatedAt
		payload = append(payload, api.EntryPayload{
			EntryDate: r.EntryDate.String(),
			Person:    r.Person,
			Grace:     r.Grace,
			Gratitude: r.Gratitude,
			UpdatedAt: &ts,
		})
	}

	results, err := s.client.Push(ctx, deviceID, payload)
	if err != nil {
		// Whole-batch retry on the next pass; nothing was marked synced.
		return summary, err
	}

	var acknowledged []journal.Date
	for _, res := range results {
		switch res.Status {
		case api.StatusUpserted:
			summary.Pushed++
		case api.StatusSkipped:
			summary.Skipped++
		case api.StatusRejected:
			summary.Rejected++
			s.logger.Warn(ctx, "entry rejected by server", "date", res.EntryDate)
			continue
		}
		date, err := journal.ParseDate(res.EntryDate)
		if err != nil {
			return summary, fmt.Errorf("unparseable date in push response: %w", err)
		}
		acknowledged = append(acknowledged, date)
	}

	if len(acknowledged) > 0 {
		if err := s.records.MarkSynced(ctx, acknowledged, s.clock.NowMilli()); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// Flashbacks returns the week-ago and year-ago glimpses for a date, served
// from the local store. Entries with no content are dropped.
func (s *JournalService) Flashbacks(ctx context.Context, date journal.Date) (Flashbacks, error) {
	var fb Flashbacks

	weekAgo, err := s.flashbackFor(ctx, date.AddDays(-7))
	if err != nil {
		return fb, err
	}
	fb.WeekAgo = weekAgo

	yearAgo, err := s.flashbackFor(ctx, date.AddYears(-1))
	if err != nil {
		return fb, err
	}
	fb.YearAgo = yearAgo

	return fb, nil
}

func (s *JournalService) flashbackFor(ctx context.Context, date journal.Date) (*Flashback, error) {
	record, err := s.records.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if record == nil || !journal.HasContent(record.Version()) {
		return nil, nil
	}
	return &Flashback{Date: record.EntryDate, Snippet: journal.Snippet(record.Version())}, nil
}

// History returns every local record, newest first.
func (s *JournalService) History(ctx context.Context) ([]EntryView, error) {
	all, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(all))
	for i := range all {
		views = append(views, *viewFromRecord(&all[i]))
	}
	return views, nil
}

// Login walks the magic-link flow: request a link for email, or exchange a
// token received out-of-band for an access token persisted in metadata.
func (s *JournalService) RequestSignIn(ctx context.Context, email string) error {
	return s.client.RequestMagicLink(ctx, email)
}

func (s *JournalService) CompleteSignIn(ctx context.Context, token string) error {
	accessToken, err := s.client.ConsumeMagicLink(ctx, token)
	if err != nil {
		return err
	}
	if err := s.meta.Set(ctx, metadata.KeyAccessToken, []byte(accessToken)); err != nil {
		return err
	}
	s.client.SetAccessToken(accessToken)
	return nil
}

// SignedIn reports whether an access token is stored.
func (s *JournalService) SignedIn(ctx context.Context) (bool, error) {
	return s.loadToken(ctx)
}

// Online probes server reachability.
func (s *JournalService) Online(ctx context.Context) bool {
	return s.client.Ping(ctx) == nil
}

// SaveCount returns the device-local save counter used for the review
// nudge. It is pure UI state and never consulted by sync.
func (s *JournalService) SaveCount(ctx context.Context) (int, error) {
	raw, err := s.meta.Get(ctx, metadata.KeySaveCount)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt save counter: %w", err)
	}
	return n, nil
}

func (s *JournalService) IncrementSaveCount(ctx context.Context) error {
	n, err := s.SaveCount(ctx)
	if err != nil {
		return err
	}
	return s.meta.Set(ctx, metadata.KeySaveCount, []byte(strconv.Itoa(n+1)))
}
