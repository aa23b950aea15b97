package mocks

import (
	"context"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/metinatakli/ticket-booking-system/internal/events"
	"github.com/stretchr/testify/mock"
)

type MockNotificationRepo struct {
	mock.Mock
	domain.NotificationRepository
}

func (m *MockNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
