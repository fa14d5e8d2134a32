package users

import (
	"context"

	"github.com/daybook-app/daybook/internal/server/models"
)

// Repository describes storage operations for user accounts.
type Repository interface {
	// GetByEmail returns the user with the given email, or (nil, nil).
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or (nil, nil).
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Create inserts a new user row.
	Create(ctx context.Context, user *models.User) error
}
