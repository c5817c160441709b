package repository

import (
	"context"
	"fmt"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// notificationRepository implements NotificationRepository using PostgreSQL.
type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

// Insert writes a single notification row.
func (r *notificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, title, body, link, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, n.ID, n.Title, n.Body, n.Link, n.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("notification_id", n.ID.String()).
			Msg("failed to insert notification")
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}
