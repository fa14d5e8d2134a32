package models

import "time"

// MagicLoginToken is a single-use sign-in token. Only the bcrypt hash of the
// secret half is stored; the caller receives "<id>.<secret>" once, at mint
// time.
type MagicLoginToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
