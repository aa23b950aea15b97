package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int64) (*domain.Show, error) {
	query := `
		SELECT
			sh.id,
			sh.venue_id,
			sh.event_id,
			sh.start_time,
			sh.duration_minutes,
			e.title,
			v.name
		FROM shows sh
		JOIN events e ON sh.event_id = e.id
		JOIN venues v ON sh.venue_id = v.id
		WHERE sh.id = $1
	`

	var show domain.Show
	var durationMinutes int

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.VenueID,
		&show.EventID,
		&show.StartTime,
		&durationMinutes,
		&show.EventTitle,
		&show.VenueName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	show.Duration = time.Duration(durationMinutes) * time.Minute

	return &show, nil
}
