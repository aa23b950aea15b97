package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		seatIDs := make([]int64, len(booking.Tickets))
		for i, ticket := range booking.Tickets {
			seatIDs[i] = ticket.SeatID
		}

		query := `
			SELECT COUNT(*)
			FROM seats s
			JOIN shows sh ON sh.venue_id = s.venue_id
			WHERE sh.id = $1 AND s.id = ANY($2)
		`

		var found int
		err := tx.QueryRow(ctx, query, booking.ShowID, seatIDs).Scan(&found)
		if err != nil {
			return err
		}

		if found != len(seatIDs) {
			return domain.ErrSeatsNoLongerExist
		}

		query = `
			INSERT INTO bookings (user_id, show_id, status, total_amount, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.UserID,
			booking.ShowID,
			string(booking.Status),
			toNumeric(booking.TotalAmount),
			booking.CreatedAt).Scan(&booking.ID)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO payments (booking_id, amount, status, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`

		payment.BookingID = booking.ID

		err = tx.QueryRow(
			ctx,
			query,
			payment.BookingID,
			toNumeric(payment.Amount),
			string(payment.Status),
			payment.CreatedAt).Scan(&payment.ID)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.Tickets))
		for i := range booking.Tickets {
			booking.Tickets[i].BookingID = booking.ID
			ticket := booking.Tickets[i]

			rows = append(rows, []any{
				ticket.BookingID,
				ticket.ShowID,
				ticket.SeatID,
				toNumeric(ticket.Price),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"tickets"},
			[]string{"booking_id", "show_id", "seat_id", "price"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrSeatsAlreadyBooked
			}

			return err
		}

		return nil
	})
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, show_id, status, total_amount, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking domain.Booking
	var status string
	var total pgtype.Numeric

	err := p.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&status,
		&total,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	booking.TotalAmount = fromNumeric(total)

	tickets, err := p.getTickets(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Tickets = tickets

	return &booking, nil
}

func (p *PostgresBookingRepository) getTickets(ctx context.Context, bookingID int64) ([]domain.Ticket, error) {
	query := `
		SELECT id, booking_id, show_id, seat_id, price
		FROM tickets
		WHERE booking_id = $1
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanTicket)
}

func scanTicket(row pgx.CollectableRow) (domain.Ticket, error) {
	var ticket domain.Ticket
	var price pgtype.Numeric

	err := row.Scan(&ticket.ID, &ticket.BookingID, &ticket.ShowID, &ticket.SeatID, &price)
	ticket.Price = fromNumeric(price)

	return ticket, err
}

// Cancel locks the booking row so two concurrent cancellations cannot both
// pass the status check.
func (p *PostgresBookingRepository) Cancel(ctx context.Context, bookingID int64, refund *domain.Refund) ([]domain.Ticket, error) {
	var tickets []domain.Ticket

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var status string

		err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, bookingID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if !domain.BookingStatus(status).CanTransitionTo(domain.BookingStatusCancelled) {
			return domain.ErrBookingCancelled
		}

		err = tx.QueryRow(ctx, `SELECT id FROM payments WHERE booking_id = $1`, bookingID).Scan(&refund.PaymentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrPaymentRecordNotFound
			}

			return err
		}

		query := `
			DELETE FROM tickets
			WHERE booking_id = $1
			RETURNING id, booking_id, show_id, seat_id, price
		`

		rows, err := tx.Query(ctx, query, bookingID)
		if err != nil {
			return err
		}

		tickets, err = pgx.CollectRows(rows, scanTicket)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO refunds (booking_id, payment_id, amount, status, processed_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		refund.BookingID = bookingID

		err = tx.QueryRow(
			ctx,
			query,
			refund.BookingID,
			refund.PaymentID,
			toNumeric(refund.Amount),
			string(refund.Status),
			refund.ProcessedAt,
			refund.CreatedAt).Scan(&refund.ID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`,
			string(domain.PaymentStatusRefunded), refund.PaymentID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`,
			string(domain.BookingStatusCancelled), bookingID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return tickets, nil
}
