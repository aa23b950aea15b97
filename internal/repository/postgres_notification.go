package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

type PostgresNotificationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{
		db: db,
	}
}

func (p *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO emails (user_id, type, subject, body, sent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return p.db.QueryRow(ctx, query, n.UserID, string(n.Type), n.Subject, n.Body, n.Sent).Scan(&n.ID, &n.CreatedAt)
}
