package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// sessionRepository implements SessionRepository against the sessions
// table the hosted auth provider writes.
type sessionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "session").Logger(),
	}
}

// GetByToken returns the unexpired session for a token, or nil.
func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	query := `
		SELECT token, user_id, role, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`

	var s model.Session
	err := r.pool.QueryRow(ctx, query, token).Scan(&s.Token, &s.UserID, &s.Role, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query session")
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &s, nil
}
