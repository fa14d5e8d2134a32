// Package users provides the PostgreSQL-backed repository for accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE email = $1`, email)

	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = $1`, id)

	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email) VALUES ($1, $2)`, user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
