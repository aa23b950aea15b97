package mocks

import (
	"context"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) CreateConfirmed(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	args := m.Called(ctx, booking, payment)
	return args.Error(0)
}

func (m *MockBookingRepo) GetById(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Cancel(ctx context.Context, bookingID int64, refund *domain.Refund) ([]domain.Ticket, error) {
	args := m.Called(ctx, bookingID, refund)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

type MockTicketRepo struct {
	mock.Mock
	domain.TicketRepository
}

func (m *MockTicketRepo) GetBookedSeatIdsByShowId(ctx context.Context, showID int64) ([]int64, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
