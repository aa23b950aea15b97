// Package events publishes booking lifecycle events for downstream consumers.
// Publishing happens after the durable commit and is best effort.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	BookingConfirmed Type = "booking.confirmed"
	BookingCancelled Type = "booking.cancelled"
)

type BookingEvent struct {
	Type       Type            `json:"type"`
	BookingID  int64           `json:"bookingId"`
	UserID     int64           `json:"userId"`
	ShowID     int64           `json:"showId"`
	SeatIDs    []int64         `json:"seatIds"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
