package mocks

import (
	"context"

	"github.com/metinatakli/ticket-booking-system/internal/booking"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ShowSeats(ctx context.Context, showID int64) (*booking.ShowSeats, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.ShowSeats), args.Error(1)
}

func (m *MockBookingService) Reserve(
	ctx context.Context,
	userID int64,
	input booking.ReserveInput) (*booking.ReserveResult, error) {

	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.ReserveResult), args.Error(1)
}

func (m *MockBookingService) ProcessPayment(
	ctx context.Context,
	reservationID string,
	userID int64,
	amount decimal.Decimal) (*booking.PaymentResult, error) {

	args := m.Called(ctx, reservationID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.PaymentResult), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (*booking.CancelResult, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CancelResult), args.Error(1)
}

func (m *MockBookingService) ReleaseReservation(ctx context.Context, reservationID string, userID int64) error {
	args := m.Called(ctx, reservationID, userID)
	return args.Error(0)
}
