package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// CanTransitionTo reports whether a booking in status s may move to next.
// CONFIRMED -> CANCELLED is the only legal transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingStatusConfirmed && next == BookingStatusCancelled
}

type Booking struct {
	ID          int64
	UserID      int64
	ShowID      int64
	Status      BookingStatus
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Tickets     []Ticket
}

type Ticket struct {
	ID        int64
	BookingID int64
	ShowID    int64
	SeatID    int64
	Price     decimal.Decimal
	Seat      *Seat
}

type BookingRepository interface {
	// CreateConfirmed stores the booking, its payment and tickets in a single
	// transaction. It fails with ErrSeatsNoLongerExist if any ticket seat is
	// missing from the show's venue and with ErrSeatsAlreadyBooked if a seat
	// already holds a ticket for the show.
	CreateConfirmed(ctx context.Context, booking *Booking, payment *Payment) error
	GetById(ctx context.Context, id int64) (*Booking, error)
	// Cancel deletes the booking's tickets, records the refund and marks the
	// booking cancelled in a single transaction. It returns the deleted tickets.
	Cancel(ctx context.Context, bookingID int64, refund *Refund) ([]Ticket, error)
}

type TicketRepository interface {
	GetBookedSeatIdsByShowId(ctx context.Context, showID int64) ([]int64, error)
}
