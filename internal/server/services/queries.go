package services

import (
	"context"
	"database/sql"

	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/server/models"
	"github.com/daybook-app/daybook/internal/server/repositories/repomanager"
)

// Flashbacks are the week-ago / year-ago glimpses shown alongside a date.
type Flashbacks struct {
	WeekAgo *models.Entry
	YearAgo *models.Entry
}

// EntryQueries serves read-only entry lookups.
type EntryQueries struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewEntryQueries(db *sql.DB, repos repomanager.RepositoryManager) *EntryQueries {
	return &EntryQueries{db: db, repos: repos}
}

// ForUserDate returns the entry for (userID, date), or nil.
func (q *EntryQueries) ForUserDate(ctx context.Context, userID string, date journal.Date) (*models.Entry, error) {
	return q.repos.Entries(q.db).GetByDate(ctx, userID, date)
}

// Flashbacks returns the week-ago and year-ago entries relative to date.
// Entries without any content are dropped, matching what the cards can
// display.
func (q *EntryQueries) Flashbacks(ctx context.Context, userID string, date journal.Date) (Flashbacks, error) {
	repo := q.repos.Entries(q.db)

	weekAgo, err := repo.GetByDate(ctx, userID, date.AddDays(-7))
	if err != nil {
		return Flashbacks{}, err
	}
	yearAgo, err := repo.GetByDate(ctx, userID, date.AddYears(-1))
	if err != nil {
		return Flashbacks{}, err
	}

	fb := Flashbacks{WeekAgo: weekAgo, YearAgo: yearAgo}
	if fb.WeekAgo != nil && !journal.HasContent(fb.WeekAgo.Version()) {
		fb.WeekAgo = nil
	}
	if fb.YearAgo != nil && !journal.HasContent(fb.YearAgo.Version()) {
		fb.YearAgo = nil
	}
	return fb, nil
}
