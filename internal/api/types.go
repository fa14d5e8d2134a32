// Package api defines the JSON wire types shared by the server handlers and
// the client transport, so both sides marshal the sync contract from one
// definition.
package api

// Item statuses reported per entry in a push response. The server's
// created/updated distinction is internal; both surface as "upserted".
const (
	StatusUpserted = "upserted"
	StatusSkipped  = "skipped"
	StatusRejected = "rejected"
)

// EntryPayload is one candidate entry as sent by a device. UpdatedAt is a
// pointer so a missing timestamp is distinguishable from zero and can be
// rejected per contract.
type EntryPayload struct {
	EntryDate string  `json:"entry_date"`
	Person    *string `json:"person"`
	Grace     *string `json:"grace"`
	Gratitude *string `json:"gratitude"`
	UpdatedAt *int64  `json:"updated_at"`
}

// PushRequest is the batch-push body for POST /api/sync/push.
type PushRequest struct {
	DeviceID string         `json:"device_id" validate:"required,max=64"`
	Entries  []EntryPayload `json:"entries" validate:"required,min=1"`
}

// PushResult is the per-item outcome, one per input entry, in input order.
type PushResult struct {
	EntryDate string              `json:"entry_date"`
	Status    string              `json:"status"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

// PushResponse reports ok:true even when individual items were rejected;
// partial failure within a batch is normal, not exceptional.
type PushResponse struct {
	OK      bool         `json:"ok"`
	Results []PushResult `json:"results"`
}

// EntryRef identifies the stored entry echoed back by the single upsert.
type EntryRef struct {
	EntryDate string `json:"entry_date"`
	UpdatedAt int64  `json:"updated_at"`
}

// UpsertResponse is the body for POST /api/entries/upsert.
type UpsertResponse struct {
	OK     bool     `json:"ok"`
	Status string   `json:"status"`
	Entry  EntryRef `json:"entry"`
}

// Entry is a full server-side entry as returned by GET /api/entries/{date}.
type Entry struct {
	EntryDate string  `json:"entry_date"`
	Person    *string `json:"person"`
	Grace     *string `json:"grace"`
	Gratitude *string `json:"gratitude"`
	UpdatedAt int64   `json:"updated_at"`
}

// EntryResponse wraps a fetched entry; Entry is null when no record exists
// for the requested date.
type EntryResponse struct {
	OK    bool   `json:"ok"`
	Entry *Entry `json:"entry"`
}

// Flashback is a past entry surfaced alongside a date being viewed.
type Flashback struct {
	EntryDate string `json:"entry_date"`
	Snippet   string `json:"snippet"`
}

// FlashbacksResponse carries the week-ago and year-ago glimpses for a date;
// either may be null.
type FlashbacksResponse struct {
	OK      bool       `json:"ok"`
	WeekAgo *Flashback `json:"week_ago"`
	YearAgo *Flashback `json:"year_ago"`
}

// MagicLinkRequest asks for a sign-in link for the given address.
type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConsumeRequest exchanges a one-time magic-link token for an access token.
type ConsumeRequest struct {
	Token string `json:"token" validate:"required"`
}

// ConsumeResponse carries the bearer token for subsequent requests.
type ConsumeResponse struct {
	OK          bool   `json:"ok"`
	AccessToken string `json:"access_token"`
}

// OKResponse is the generic success body for endpoints with nothing to say.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the generic failure body. Errors carries field-level
// detail for whole-request validation failures.
type ErrorResponse struct {
	OK     bool                `json:"ok"`
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}
