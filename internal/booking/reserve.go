package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

type ReserveInput struct {
	ShowID int64
	Seats  []domain.SeatPosition
}

type ReserveResult struct {
	ReservationID string
	TotalAmount   decimal.Decimal
	ExpiresAt     time.Time
}

func validateSelection(seats []domain.SeatPosition) error {
	if len(seats) == 0 {
		return domain.ErrNoSeatsSelected
	}

	if len(seats) > MaxSeatsPerBooking {
		return domain.ErrTooManySeats
	}

	seen := make(map[domain.SeatPosition]struct{}, len(seats))
	for _, p := range seats {
		if _, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSeat, p.Label())
		}
		seen[p] = struct{}{}
	}

	return nil
}

// Reserve resolves the selected seats inside the show's venue and holds them
// for userID. Nothing is locked unless every seat exists and none is sold.
func (s *Service) Reserve(ctx context.Context, userID int64, input ReserveInput) (_ *ReserveResult, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Reserve")
	defer func() { endSpan(span, err) }()

	err = validateSelection(input.Seats)
	if err != nil {
		return nil, err
	}

	show, err := s.getShow(ctx, input.ShowID)
	if err != nil {
		return nil, err
	}

	seats, err := s.repos.Seats.GetByPositions(ctx, show.VenueID, input.Seats)
	if err != nil {
		return nil, fmt.Errorf("resolve seats: %w", err)
	}

	byPosition := make(map[domain.SeatPosition]domain.Seat, len(seats))
	for _, seat := range seats {
		byPosition[seat.Position()] = seat
	}

	seatIDs := make([]int64, 0, len(input.Seats))
	for _, p := range input.Seats {
		seat, ok := byPosition[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrSeatNotFound, p.Label())
		}
		seatIDs = append(seatIDs, seat.ID)
	}

	booked, err := s.repos.Tickets.GetBookedSeatIdsByShowId(ctx, show.ID)
	if err != nil {
		return nil, fmt.Errorf("get booked seats: %w", err)
	}

	bookedSet := make(map[int64]struct{}, len(booked))
	for _, id := range booked {
		bookedSet[id] = struct{}{}
	}

	var sold []string
	for _, p := range input.Seats {
		if _, ok := bookedSet[byPosition[p].ID]; ok {
			sold = append(sold, p.Label())
		}
	}

	if len(sold) > 0 {
		return nil, fmt.Errorf("%w: [%s]", domain.ErrSeatsAlreadyBooked, strings.Join(sold, ", "))
	}

	available, err := s.reservations.SeatsAvailable(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("check seat availability: %w", err)
	}

	if !available {
		return nil, domain.ErrSeatsLocked
	}

	total := SeatPrice.Mul(decimal.NewFromInt(int64(len(seatIDs))))

	r, err := s.reservations.Create(ctx, userID, show.ID, seatIDs, total)
	if err != nil {
		return nil, err
	}

	s.logger.Info("seats reserved",
		"reservation_id", r.ID,
		"user_id", userID,
		"show_id", show.ID,
		"seat_ids", seatIDs,
		"degraded", r.Degraded)

	return &ReserveResult{
		ReservationID: r.ID,
		TotalAmount:   r.TotalAmount,
		ExpiresAt:     r.ExpiresAt,
	}, nil
}

// ReleaseReservation lets the owner give up a hold before it expires.
func (s *Service) ReleaseReservation(ctx context.Context, reservationID string, userID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "booking.ReleaseReservation")
	defer func() { endSpan(span, err) }()

	r, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}

	if r == nil {
		return domain.ErrReservationNotFound
	}

	if !r.OwnedBy(userID) {
		return domain.ErrReservationNotOwned
	}

	return s.reservations.Release(ctx, reservationID)
}
