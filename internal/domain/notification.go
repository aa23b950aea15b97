package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationBookingConfirmation NotificationType = "BOOKING_CONFIRMATION"
	NotificationCancelBooking       NotificationType = "CANCEL_BOOKING"
)

// Notification is an outgoing message record. Delivery happens elsewhere;
// Sent stays false until a sender picks it up.
type Notification struct {
	ID        int64
	UserID    int64
	Type      NotificationType
	Subject   string
	Body      string
	Sent      bool
	CreatedAt time.Time
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
}
