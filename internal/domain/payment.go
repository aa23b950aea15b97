package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID        int64
	BookingID int64
	Amount    decimal.Decimal
	Status    PaymentStatus
	CreatedAt time.Time
}
