// Package client talks to the sync server on behalf of the device: batch
// push, single upsert, entry fetch, and the magic-link sign-in flow.
package client

import (
	"context"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/journal"
)

// Client is the device's view of the sync server. Transport failures
// surface as common.ErrTransport so callers can tell "server said no"
// apart from "server unreachable".
type Client interface {
	// SetAccessToken installs the bearer token used on authenticated calls.
	SetAccessToken(token string)

	// Ping probes server reachability.
	Ping(ctx context.Context) error

	// Push sends one batch of candidate entries and returns the per-item
	// results. Partial failure never happens at the transport level; either
	// the whole response arrives or the batch is considered not applied.
	Push(ctx context.Context, deviceID string, entries []api.EntryPayload) ([]api.PushResult, error)

	// Upsert sends one entry through the synchronous single-entry path.
	Upsert(ctx context.Context, entry api.EntryPayload) (*api.UpsertResponse, error)

	// GetEntry fetches the server's version for a date; nil when absent.
	GetEntry(ctx context.Context, date journal.Date) (*api.Entry, error)

	// GetFlashbacks fetches the week-ago and year-ago glimpses for a date.
	GetFlashbacks(ctx context.Context, date journal.Date) (*api.FlashbacksResponse, error)

	// RequestMagicLink asks the server to issue a sign-in link for email.
	RequestMagicLink(ctx context.Context, email string) error

	// ConsumeMagicLink exchanges a one-time token for an access token.
	ConsumeMagicLink(ctx context.Context, token string) (string, error)
}
