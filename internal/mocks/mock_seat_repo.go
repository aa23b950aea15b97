package mocks

import (
	"context"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatRepo struct {
	mock.Mock
	domain.SeatRepository
}

func (m *MockSeatRepo) GetByVenueId(ctx context.Context, venueID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepo) GetByPositions(
	ctx context.Context,
	venueID int64,
	positions []domain.SeatPosition) ([]domain.Seat, error) {

	args := m.Called(ctx, venueID, positions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepo) GetByIds(ctx context.Context, seatIDs []int64) ([]domain.Seat, error) {
	args := m.Called(ctx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}
