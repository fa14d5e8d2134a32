package models

import "time"

// User is an account owner, identified by email. Accounts are provisioned
// implicitly on the first magic-link request for an address.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
