// Package services implements the server-side application logic: entry
// resolution and batch push, lookup queries, and the magic-link account
// flow.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/server/config"
	"github.com/daybook-app/daybook/internal/server/models"
	"github.com/daybook-app/daybook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PushResult is the outcome for one item of a push batch. Rejected carries
// validation detail when set; otherwise Outcome reports the merge decision.
type PushResult struct {
	EntryDate string
	Outcome   journal.Outcome
	Rejected  *journal.ValidationError
}

// EntryService applies candidate versions to the authoritative store
// through the merge engine.
type EntryService struct {
	db           *sql.DB
	repos        repomanager.RepositoryManager
	minEntryDate journal.Date
	logger       logging.Logger
}

func NewEntryService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) (*EntryService, error) {
	var minDate journal.Date
	if cfg.MinEntryDate != "" {
		parsed, err := journal.ParseDate(cfg.MinEntryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid min entry date: %w", err)
		}
		minDate = parsed
	}

	return &EntryService{
		db:           db,
		repos:        repos,
		minEntryDate: minDate,
		logger:       logger,
	}, nil
}

// apply runs one validated candidate through the merge engine against the
// current stored row. The row is read under FOR UPDATE and written in the
// same transaction, so compare-and-decide is atomic per (owner, date) even
// with concurrent pushes from several devices.
func (s *EntryService) apply(ctx context.Context, userID string, v journal.Validated) (journal.Outcome, *models.Entry, error) {
	var outcome journal.Outcome
	var entry *models.Entry

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Entries(tx)

		stored, err := repo.GetByDateForUpdate(ctx, userID, v.Date)
		if err != nil {
			return err
		}

		var storedVersion *journal.Version
		if stored != nil {
			sv := stored.Version()
			storedVersion = &sv
		}

		var result journal.Version
		outcome, result = journal.Resolve(storedVersion, v.Version)

		switch outcome {
		case journal.OutcomeNoOp:
			entry = stored
			return nil
		case journal.OutcomeCreated:
			entry = &models.Entry{
				ID:        uuid.NewString(),
				UserID:    userID,
				EntryDate: v.Date,
				CreatedAt: result.UpdatedAt,
			}
		case journal.OutcomeUpdated:
			entry = stored
		}

		entry.ApplyVersion(result)
		return repo.Upsert(ctx, entry)
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to apply entry for %s: %w", v.Date, err)
	}

	return outcome, entry, nil
}

// Upsert is the direct single-entry path: validate (without the push
// acceptance floor) and apply. A non-nil *ValidationError means the
// candidate was rejected before reaching the store.
func (s *EntryService) Upsert(ctx context.Context, userID string, c journal.Candidate) (journal.Outcome, *models.Entry, *journal.ValidationError, error) {
	v, verr := c.Validate(journal.Date{})
	if verr != nil {
		return 0, nil, verr, nil
	}

	outcome, entry, err := s.apply(ctx, userID, v)
	if err != nil {
		return 0, nil, nil, err
	}
	return outcome, entry, nil, nil
}

// Push applies a batch of candidates for one owner. Every input item yields
// exactly one result in input order; a rejected item never aborts its
// siblings. Replaying an already-applied batch resolves every item to
// no-op, so the handler is safe to call repeatedly with the same payload.
// An infrastructure error aborts the whole batch instead of being reported
// per item.
func (s *EntryService) Push(ctx context.Context, userID, deviceID string, candidates []journal.Candidate) ([]PushResult, error) {
	log := s.logger.With("user_id", userID, "device_id", deviceID)

	results := make([]PushResult, 0, len(candidates))
	for _, c := range candidates {
		v, verr := c.Validate(s.minEntryDate)
		if verr != nil {
			log.Debug(ctx, "push item rejected", "entry_date", c.EntryDate, "reason", verr.Error())
			results = append(results, PushResult{EntryDate: c.EntryDate, Rejected: verr})
			continue
		}

		outcome, _, err := s.apply(ctx, userID, v)
		if err != nil {
			return nil, err
		}
		results = append(results, PushResult{EntryDate: c.EntryDate, Outcome: outcome})
	}

	log.Info(ctx, "push processed", "items", len(candidates))
	return results, nil
}
