package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/server/auth"
	"github.com/daybook-app/daybook/internal/server/config"
	"github.com/daybook-app/daybook/internal/server/models"
	"github.com/daybook-app/daybook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles accounts and the magic-link sign-in flow. Link
// delivery (email) is out of scope; the boundary decides what to do with
// the minted token.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	config *config.Config
	logger logging.Logger
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{db: db, repos: repos, config: cfg, logger: logger}
}

// RequestMagicLink mints a single-use sign-in token for the given address,
// provisioning the account on first contact. The returned token is
// "<id>.<secret>"; only the bcrypt hash of the secret is stored, so the
// value is shown exactly once.
func (s *UserService) RequestMagicLink(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: empty email", common.ErrInvalidToken)
	}

	userRepo := s.repos.Users(s.db)

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		user = &models.User{ID: uuid.NewString(), Email: email}
		if err := userRepo.Create(ctx, user); err != nil {
			return "", err
		}
		s.logger.Info(ctx, "provisioned account", "user_id", user.ID)
	}

	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}

	token := &models.MagicLoginToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: string(hash),
		ExpiresAt: time.Now().Add(s.config.MagicLinkValidityDuration),
	}
	if err := s.repos.MagicLoginTokens(s.db).Create(ctx, token); err != nil {
		return "", err
	}

	return token.ID + "." + secret, nil
}

// ConsumeMagicLink exchanges a valid, unexpired, unused token for a signed
// access token. Consumption is single-use: a concurrent double consume
// loses on the conditional update and is rejected.
func (s *UserService) ConsumeMagicLink(ctx context.Context, token string) (string, error) {
	id, secret, ok := strings.Cut(token, ".")
	if !ok {
		return "", common.ErrInvalidToken
	}

	tokenRepo := s.repos.MagicLoginTokens(s.db)

	stored, err := tokenRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if stored == nil || stored.ConsumedAt != nil {
		return "", common.ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", common.ErrTokenExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.TokenHash), []byte(secret)); err != nil {
		return "", common.ErrInvalidToken
	}

	if err := tokenRepo.MarkConsumed(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", err
	}

	return auth.GenerateToken(stored.UserID, []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
}
