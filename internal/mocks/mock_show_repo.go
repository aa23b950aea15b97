package mocks

import (
	"context"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowRepo struct {
	mock.Mock
	domain.ShowRepository
}

func (m *MockShowRepo) GetById(ctx context.Context, id int64) (*domain.Show, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Show), args.Error(1)
}
