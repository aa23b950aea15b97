package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/metinatakli/ticket-booking-system/internal/events"
	"github.com/shopspring/decimal"
)

type CancelResult struct {
	BookingID    int64
	RefundAmount decimal.Decimal
	Refund       *domain.Refund
}

// CancelBooking cancels a confirmed booking, frees its seats and records a
// pending refund for the full amount.
func (s *Service) CancelBooking(ctx context.Context, bookingID, userID int64) (_ *CancelResult, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.CancelBooking")
	defer func() { endSpan(span, err) }()

	booking, err := s.repos.Bookings.GetById(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}

	if booking.UserID != userID {
		return nil, domain.ErrBookingNotOwned
	}

	if !booking.Status.CanTransitionTo(domain.BookingStatusCancelled) {
		return nil, domain.ErrBookingCancelled
	}

	show, err := s.getShow(ctx, booking.ShowID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	if show.HasStarted(now) {
		return nil, domain.ErrShowAlreadyStarted
	}

	if show.StartTime.Sub(now) < CancellationCutoff {
		return nil, domain.ErrCancellationTooLate
	}

	refund := &domain.Refund{
		BookingID: booking.ID,
		Amount:    booking.TotalAmount,
		Status:    domain.RefundStatusPending,
		CreatedAt: now,
	}

	tickets, err := s.repos.Bookings.Cancel(ctx, booking.ID, refund)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled

	ctx = context.WithoutCancel(ctx)

	s.cancelledCounter.Add(ctx, 1)
	s.logger.Info("booking cancelled",
		"booking_id", booking.ID,
		"user_id", userID,
		"refund_id", refund.ID,
		"seat_ids", ticketSeatIDs(tickets))

	s.notifyCancelled(ctx, show, booking, tickets, refund)

	return &CancelResult{
		BookingID:    booking.ID,
		RefundAmount: refund.Amount,
		Refund:       refund,
	}, nil
}

func (s *Service) notifyCancelled(
	ctx context.Context,
	show *domain.Show,
	booking *domain.Booking,
	tickets []domain.Ticket,
	refund *domain.Refund,
) {
	logger := s.logger.With("booking_id", booking.ID)

	err := s.attachSeats(ctx, tickets)
	if err != nil {
		logger.Error("failed to load ticket seats for cancellation", "error", err)
	}

	user, err := s.getUser(ctx, booking.UserID)
	if err != nil {
		logger.Error("failed to load user for cancellation notice", "error", err)
	} else {
		n, err := s.composer.BookingCancellation(user, show, booking, tickets, refund)
		if err != nil {
			logger.Error("failed to compose booking cancellation", "error", err)
		} else if err := s.repos.Notifications.Create(ctx, n); err != nil {
			logger.Error("failed to store booking cancellation", "error", err)
		}
	}

	err = s.publisher.Publish(ctx, events.BookingEvent{
		Type:       events.BookingCancelled,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		ShowID:     booking.ShowID,
		SeatIDs:    ticketSeatIDs(tickets),
		Amount:     refund.Amount,
		OccurredAt: s.clock.Now(),
	})
	if err != nil {
		logger.Warn("failed to publish booking event", "type", events.BookingCancelled, "error", err)
	}
}
