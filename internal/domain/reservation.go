package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Reservation is a time-bounded hold on a seat set for one user and show.
// It only ever lives in the reservation cache.
type Reservation struct {
	ID          string          `json:"reservationId"`
	UserID      int64           `json:"userId"`
	ShowID      int64           `json:"showId"`
	SeatIDs     []int64         `json:"seatIds"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   time.Time       `json:"expiresAt"`

	// Degraded is set when the hold was issued while the shared cache was
	// unreachable, so seat exclusivity was not enforced across instances.
	Degraded bool `json:"-"`
}

func (r *Reservation) OwnedBy(userID int64) bool {
	return r.UserID == userID
}

// ReservationManager issues and tracks seat holds.
type ReservationManager interface {
	Create(ctx context.Context, userID, showID int64, seatIDs []int64, totalAmount decimal.Decimal) (*Reservation, error)
	// Get returns nil without error for an expired or unknown reservation.
	Get(ctx context.Context, id string) (*Reservation, error)
	Release(ctx context.Context, id string) error
	SeatsAvailable(ctx context.Context, seatIDs []int64) (bool, error)
	Held(ctx context.Context, seatIDs []int64) ([]int64, error)
}
