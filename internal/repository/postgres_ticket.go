package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTicketRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTicketRepository(db *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

func (p *PostgresTicketRepository) GetBookedSeatIdsByShowId(ctx context.Context, showID int64) ([]int64, error) {
	query := `SELECT seat_id FROM tickets WHERE show_id = $1 ORDER BY seat_id`

	rows, err := p.db.Query(ctx, query, showID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
