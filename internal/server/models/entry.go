// Package models defines server-side data models persisted in PostgreSQL.
package models

import "github.com/daybook-app/daybook/internal/journal"

// Entry is the authoritative journal record: at most one per
// (UserID, EntryDate) pair, enforced by a uniqueness constraint.
// CreatedAt and UpdatedAt are client-supplied logical timestamps in
// milliseconds; the server never substitutes its own clock for them.
type Entry struct {
	ID        string
	UserID    string
	EntryDate journal.Date
	Person    *string
	Grace     *string
	Gratitude *string
	CreatedAt int64
	UpdatedAt int64
}

// Version exposes the entry's content as a mergeable version.
func (e *Entry) Version() journal.Version {
	return journal.Version{
		Person:    e.Person,
		Grace:     e.Grace,
		Gratitude: e.Gratitude,
		UpdatedAt: e.UpdatedAt,
	}
}

// ApplyVersion overwrites the entry's content fields in full from v.
// Identity fields (ID, UserID, EntryDate, CreatedAt) are untouched.
func (e *Entry) ApplyVersion(v journal.Version) {
	e.Person = v.Person
	e.Grace = v.Grace
	e.Gratitude = v.Gratitude
	e.UpdatedAt = v.UpdatedAt
}
