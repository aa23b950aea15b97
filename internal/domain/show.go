package domain

import (
	"context"
	"time"
)

type Show struct {
	ID         int64
	VenueID    int64
	EventID    int64
	StartTime  time.Time
	Duration   time.Duration
	EventTitle string
	VenueName  string
}

// HasStarted reports whether the show start time is at or before now.
func (s Show) HasStarted(now time.Time) bool {
	return !s.StartTime.After(now)
}

type ShowRepository interface {
	GetById(ctx context.Context, id int64) (*Show, error)
}
