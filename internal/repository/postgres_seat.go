package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetByVenueId(ctx context.Context, venueID int64) ([]domain.Seat, error) {
	query := `
		SELECT id, venue_id, section, seat_row, seat_number
		FROM seats
		WHERE venue_id = $1
		ORDER BY section, seat_row, seat_number
	`

	return p.querySeats(ctx, query, venueID)
}

// GetByPositions returns the seats of the venue matching positions. Positions
// without a seat are silently skipped.
func (p *PostgresSeatRepository) GetByPositions(
	ctx context.Context,
	venueID int64,
	positions []domain.SeatPosition) ([]domain.Seat, error) {

	sections := make([]string, len(positions))
	rows := make([]string, len(positions))
	numbers := make([]string, len(positions))

	for i, pos := range positions {
		sections[i] = pos.Section
		rows[i] = pos.Row
		numbers[i] = pos.SeatNumber
	}

	query := `
		SELECT s.id, s.venue_id, s.section, s.seat_row, s.seat_number
		FROM seats s
		JOIN unnest($2::text[], $3::text[], $4::text[]) AS wanted(section, seat_row, seat_number)
			ON s.section = wanted.section
			AND s.seat_row = wanted.seat_row
			AND s.seat_number = wanted.seat_number
		WHERE s.venue_id = $1
	`

	return p.querySeats(ctx, query, venueID, sections, rows, numbers)
}

func (p *PostgresSeatRepository) GetByIds(ctx context.Context, seatIDs []int64) ([]domain.Seat, error) {
	query := `
		SELECT id, venue_id, section, seat_row, seat_number
		FROM seats
		WHERE id = ANY($1)
		ORDER BY section, seat_row, seat_number
	`

	return p.querySeats(ctx, query, seatIDs)
}

func (p *PostgresSeatRepository) querySeats(ctx context.Context, query string, args ...any) ([]domain.Seat, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	seats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Seat, error) {
		var seat domain.Seat
		err := row.Scan(&seat.ID, &seat.VenueID, &seat.Section, &seat.Row, &seat.SeatNumber)
		return seat, err
	})
	if err != nil {
		return nil, err
	}

	return seats, nil
}
