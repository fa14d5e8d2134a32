// Package models defines the device-local data structures.
package models

import "github.com/daybook-app/daybook/internal/journal"

// LocalRecord is the device-resident copy of an entry plus sync
// bookkeeping. SyncedAt is nil while the record carries changes the server
// has not acknowledged. ServerEntryDate is the date the server last
// confirmed for this record, set by mark-synced.
type LocalRecord struct {
	LocalID         string
	EntryDate       journal.Date
	Person          *string
	Grace           *string
	Gratitude       *string
	UpdatedAt       int64
	SyncedAt        *int64
	ServerEntryDate *journal.Date
}

// Version extracts the content fields plus timestamp for the merge engine.
func (r *LocalRecord) Version() journal.Version {
	return journal.Version{
		Person:    r.Person,
		Grace:     r.Grace,
		Gratitude: r.Gratitude,
		UpdatedAt: r.UpdatedAt,
	}
}

// ApplyVersion overwrites the content fields and timestamp in full.
func (r *LocalRecord) ApplyVersion(v journal.Version) {
	r.Person = v.Person
	r.Grace = v.Grace
	r.Gratitude = v.Gratitude
	r.UpdatedAt = v.UpdatedAt
}
