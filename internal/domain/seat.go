package domain

import (
	"context"
	"fmt"
)

type Seat struct {
	ID         int64
	VenueID    int64
	Section    string
	Row        string
	SeatNumber string
}

// SeatPosition identifies a seat inside a venue the way customers refer to it.
type SeatPosition struct {
	Section    string
	Row        string
	SeatNumber string
}

func (s Seat) Position() SeatPosition {
	return SeatPosition{Section: s.Section, Row: s.Row, SeatNumber: s.SeatNumber}
}

func (s Seat) Label() string {
	return s.Position().Label()
}

func (p SeatPosition) Label() string {
	return fmt.Sprintf("%s-%s-%s", p.Section, p.Row, p.SeatNumber)
}

type SeatRepository interface {
	GetByVenueId(ctx context.Context, venueID int64) ([]Seat, error)
	GetByPositions(ctx context.Context, venueID int64, positions []SeatPosition) ([]Seat, error)
	GetByIds(ctx context.Context, seatIDs []int64) ([]Seat, error)
}
