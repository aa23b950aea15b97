package mocks

import (
	"context"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockReservationManager struct {
	mock.Mock
	domain.ReservationManager
}

func (m *MockReservationManager) Create(
	ctx context.Context,
	userID, showID int64,
	seatIDs []int64,
	totalAmount decimal.Decimal) (*domain.Reservation, error) {

	args := m.Called(ctx, userID, showID, seatIDs, totalAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationManager) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationManager) Release(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationManager) SeatsAvailable(ctx context.Context, seatIDs []int64) (bool, error) {
	args := m.Called(ctx, seatIDs)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationManager) Held(ctx context.Context, seatIDs []int64) ([]int64, error) {
	args := m.Called(ctx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
