package booking

import (
	"context"
	"fmt"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/metinatakli/ticket-booking-system/internal/events"
	"github.com/shopspring/decimal"
)

type PaymentResult struct {
	BookingID int64
	Booking   *domain.Booking
}

// ProcessPayment converts a live reservation into a confirmed booking with
// its payment and tickets. Validation failures leave the reservation in
// place so the caller can retry; a failed commit releases it.
func (s *Service) ProcessPayment(
	ctx context.Context,
	reservationID string,
	userID int64,
	amount decimal.Decimal,
) (_ *PaymentResult, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.ProcessPayment")
	defer func() { endSpan(span, err) }()

	r, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	if r == nil {
		return nil, domain.ErrReservationNotFound
	}

	if !r.OwnedBy(userID) {
		return nil, domain.ErrReservationNotOwned
	}

	if !amount.Equal(r.TotalAmount) {
		return nil, fmt.Errorf("%w. expected: %s, received: %s",
			domain.ErrAmountMismatch, r.TotalAmount.StringFixed(2), amount.StringFixed(2))
	}

	user, show, booking, err := s.commit(ctx, r, amount)
	if err != nil {
		releaseErr := s.reservations.Release(context.WithoutCancel(ctx), r.ID)
		if releaseErr != nil {
			s.logger.Error("failed to release reservation after failed commit",
				"reservation_id", r.ID,
				"error", releaseErr)
		}

		return nil, err
	}

	// The booking is durable from here on; follow-up work must outlive the caller.
	ctx = context.WithoutCancel(ctx)

	s.confirmedCounter.Add(ctx, 1)
	s.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"reservation_id", r.ID,
		"user_id", userID,
		"seat_ids", r.SeatIDs)

	err = s.reservations.Release(ctx, r.ID)
	if err != nil {
		s.cleanupFailuresCounter.Add(ctx, 1)
		s.logger.Error("failed to release reservation after booking was committed",
			"reservation_id", r.ID,
			"booking_id", booking.ID,
			"seat_ids", r.SeatIDs,
			"error", err)
	}

	s.notifyConfirmed(ctx, user, show, booking)

	return &PaymentResult{BookingID: booking.ID, Booking: booking}, nil
}

func (s *Service) commit(
	ctx context.Context,
	r *domain.Reservation,
	amount decimal.Decimal,
) (*domain.User, *domain.Show, *domain.Booking, error) {
	user, err := s.getUser(ctx, r.UserID)
	if err != nil {
		return nil, nil, nil, err
	}

	show, err := s.getShow(ctx, r.ShowID)
	if err != nil {
		return nil, nil, nil, err
	}

	now := s.clock.Now()

	booking := &domain.Booking{
		UserID:      r.UserID,
		ShowID:      r.ShowID,
		Status:      domain.BookingStatusConfirmed,
		TotalAmount: r.TotalAmount,
		CreatedAt:   now,
		Tickets:     make([]domain.Ticket, len(r.SeatIDs)),
	}

	for i, seatID := range r.SeatIDs {
		booking.Tickets[i] = domain.Ticket{
			ShowID: r.ShowID,
			SeatID: seatID,
			Price:  SeatPrice,
		}
	}

	payment := &domain.Payment{
		Amount:    amount,
		Status:    domain.PaymentStatusSuccess,
		CreatedAt: now,
	}

	err = s.repos.Bookings.CreateConfirmed(ctx, booking, payment)
	if err != nil {
		return nil, nil, nil, err
	}

	return user, show, booking, nil
}

func (s *Service) notifyConfirmed(ctx context.Context, user *domain.User, show *domain.Show, booking *domain.Booking) {
	logger := s.logger.With("booking_id", booking.ID)

	err := s.attachSeats(ctx, booking.Tickets)
	if err != nil {
		logger.Error("failed to load ticket seats for confirmation", "error", err)
	}

	n, err := s.composer.BookingConfirmation(user, show, booking)
	if err != nil {
		logger.Error("failed to compose booking confirmation", "error", err)
	} else if err := s.repos.Notifications.Create(ctx, n); err != nil {
		logger.Error("failed to store booking confirmation", "error", err)
	}

	err = s.publisher.Publish(ctx, events.BookingEvent{
		Type:       events.BookingConfirmed,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		ShowID:     booking.ShowID,
		SeatIDs:    ticketSeatIDs(booking.Tickets),
		Amount:     booking.TotalAmount,
		OccurredAt: s.clock.Now(),
	})
	if err != nil {
		logger.Warn("failed to publish booking event", "type", events.BookingConfirmed, "error", err)
	}
}

func ticketSeatIDs(tickets []domain.Ticket) []int64 {
	ids := make([]int64, len(tickets))
	for i, t := range tickets {
		ids[i] = t.SeatID
	}

	return ids
}
