package booking

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatBooked    SeatStatus = "BOOKED"
)

type SeatView struct {
	ID         int64
	Section    string
	Row        string
	SeatNumber string
	Label      string
	Status     SeatStatus
}

type RowView struct {
	Row   string
	Seats []SeatView
}

type SectionView struct {
	Section string
	Rows    []RowView
}

type ShowSeats struct {
	Show          *domain.Show
	Sections      []SectionView
	BookedSeatIDs []int64
	HeldSeatIDs   []int64
}

// ShowSeats returns the seat map of the show's venue with the status of
// every seat. Seats that cannot be checked against the cache are reported
// as available.
func (s *Service) ShowSeats(ctx context.Context, showID int64) (_ *ShowSeats, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.ShowSeats")
	defer func() { endSpan(span, err) }()

	show, err := s.getShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	seats, err := s.repos.Seats.GetByVenueId(ctx, show.VenueID)
	if err != nil {
		return nil, fmt.Errorf("get venue seats: %w", err)
	}

	booked, err := s.repos.Tickets.GetBookedSeatIdsByShowId(ctx, show.ID)
	if err != nil {
		return nil, fmt.Errorf("get booked seats: %w", err)
	}

	bookedSet := make(map[int64]struct{}, len(booked))
	for _, id := range booked {
		bookedSet[id] = struct{}{}
	}

	candidates := make([]int64, 0, len(seats))
	for _, seat := range seats {
		if _, ok := bookedSet[seat.ID]; !ok {
			candidates = append(candidates, seat.ID)
		}
	}

	held, err := s.reservations.Held(ctx, candidates)
	if err != nil {
		s.logger.Warn("could not read held seats, reporting them as available", "show_id", show.ID, "error", err)
		held = []int64{}
	}

	heldSet := make(map[int64]struct{}, len(held))
	for _, id := range held {
		heldSet[id] = struct{}{}
	}

	return &ShowSeats{
		Show:          show,
		Sections:      buildSeatMap(seats, bookedSet, heldSet),
		BookedSeatIDs: booked,
		HeldSeatIDs:   held,
	}, nil
}

func buildSeatMap(seats []domain.Seat, booked, held map[int64]struct{}) []SectionView {
	rowsBySection := make(map[string]map[string][]SeatView)

	for _, seat := range seats {
		status := SeatAvailable
		if _, ok := booked[seat.ID]; ok {
			status = SeatBooked
		} else if _, ok := held[seat.ID]; ok {
			status = SeatHeld
		}

		rows, ok := rowsBySection[seat.Section]
		if !ok {
			rows = make(map[string][]SeatView)
			rowsBySection[seat.Section] = rows
		}

		rows[seat.Row] = append(rows[seat.Row], SeatView{
			ID:         seat.ID,
			Section:    seat.Section,
			Row:        seat.Row,
			SeatNumber: seat.SeatNumber,
			Label:      seat.Label(),
			Status:     status,
		})
	}

	sections := make([]SectionView, 0, len(rowsBySection))
	for section, rows := range rowsBySection {
		view := SectionView{Section: section, Rows: make([]RowView, 0, len(rows))}

		for row, rowSeats := range rows {
			sort.Slice(rowSeats, func(i, j int) bool {
				return naturalLess(rowSeats[i].SeatNumber, rowSeats[j].SeatNumber)
			})
			view.Rows = append(view.Rows, RowView{Row: row, Seats: rowSeats})
		}

		sort.Slice(view.Rows, func(i, j int) bool {
			return naturalLess(view.Rows[i].Row, view.Rows[j].Row)
		})
		sections = append(sections, view)
	}

	sort.Slice(sections, func(i, j int) bool {
		return naturalLess(sections[i].Section, sections[j].Section)
	})

	return sections
}

// naturalLess orders numeric labels by value so that row 2 comes before
// row 10, and falls back to plain string order otherwise.
func naturalLess(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return x < y
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
