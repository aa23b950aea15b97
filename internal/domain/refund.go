package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusProcessed RefundStatus = "PROCESSED"
	RefundStatusFailed    RefundStatus = "FAILED"
)

type Refund struct {
	ID          int64
	BookingID   int64
	PaymentID   int64
	Amount      decimal.Decimal
	Status      RefundStatus
	ProcessedAt *time.Time
	CreatedAt   time.Time
}
