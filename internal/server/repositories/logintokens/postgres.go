// Package logintokens provides the PostgreSQL-backed repository for
// single-use magic-login tokens.
package logintokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.MagicLoginToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO magic_login_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert login token: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.MagicLoginToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, consumed_at, created_at
		FROM magic_login_tokens WHERE id = $1`, id)

	tok := &models.MagicLoginToken{}
	err := row.Scan(&tok.ID, &tok.UserID, &tok.TokenHash, &tok.ExpiresAt, &tok.ConsumedAt, &tok.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select login token: %w", err)
	}
	return tok, nil
}

func (r *PostgresRepository) MarkConsumed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE magic_login_tokens SET consumed_at = now()
		WHERE id = $1 AND consumed_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to consume login token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrNotFound
	}
	return nil
}
