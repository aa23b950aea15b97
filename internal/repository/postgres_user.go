package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (p *PostgresUserRepository) GetById(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, full_name, email FROM users WHERE id = $1`

	var user domain.User

	err := p.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.FullName, &user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &user, nil
}
