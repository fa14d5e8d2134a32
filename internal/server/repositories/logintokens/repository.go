package logintokens

import (
	"context"

	"github.com/daybook-app/daybook/internal/server/models"
)

// Repository describes storage operations for magic-login tokens.
type Repository interface {
	// Create inserts a freshly minted token row.
	Create(ctx context.Context, token *models.MagicLoginToken) error

	// GetByID returns the token with the given id, or (nil, nil).
	GetByID(ctx context.Context, id string) (*models.MagicLoginToken, error)

	// MarkConsumed stamps the token consumed. Consuming an already-consumed
	// token affects no rows and returns common.ErrNotFound.
	MarkConsumed(ctx context.Context, id string) error
}
