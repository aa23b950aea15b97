// Package booking coordinates the reservation and booking workflow: seat
// maps, seat holds, committing a paid reservation into durable records and
// cancelling bookings.
package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/metinatakli/ticket-booking-system/internal/clock"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/metinatakli/ticket-booking-system/internal/events"
	"github.com/metinatakli/ticket-booking-system/internal/notification"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaxSeatsPerBooking = 10
	CancellationCutoff = 24 * time.Hour
)

// SeatPrice is the flat price of a single ticket.
var SeatPrice = decimal.NewFromInt(100)

const instrumentationName = "github.com/metinatakli/ticket-booking-system/internal/booking"

type Repositories struct {
	Shows         domain.ShowRepository
	Seats         domain.SeatRepository
	Users         domain.UserRepository
	Bookings      domain.BookingRepository
	Tickets       domain.TicketRepository
	Notifications domain.NotificationRepository
}

type Service struct {
	repos        Repositories
	reservations domain.ReservationManager
	composer     *notification.Composer
	publisher    events.Publisher
	clock        clock.Clock
	logger       *slog.Logger
	tracer       trace.Tracer

	confirmedCounter       metric.Int64Counter
	cancelledCounter       metric.Int64Counter
	cleanupFailuresCounter metric.Int64Counter
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(
	repos Repositories,
	reservations domain.ReservationManager,
	composer *notification.Composer,
	opts ...Option,
) *Service {
	s := &Service{
		repos:        repos,
		reservations: reservations,
		composer:     composer,
		publisher:    events.NopPublisher{},
		clock:        clock.System{},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:       otel.Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	s.confirmedCounter = s.counter(meter, "bookings.confirmed", "Bookings committed after a successful payment")
	s.cancelledCounter = s.counter(meter, "bookings.cancelled", "Bookings cancelled with a refund")
	s.cleanupFailuresCounter = s.counter(meter, "reservations.cleanup_failures",
		"Reservations that could not be released after their booking was committed")

	return s
}

func (s *Service) counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		s.logger.Error("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}

	return c
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) getShow(ctx context.Context, showID int64) (*domain.Show, error) {
	show, err := s.repos.Shows.GetById(ctx, showID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrShowNotFound
		}

		return nil, fmt.Errorf("get show %d: %w", showID, err)
	}

	return show, nil
}

func (s *Service) getUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repos.Users.GetById(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}

		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	return user, nil
}

// attachSeats fills Ticket.Seat for every ticket whose seat still exists.
func (s *Service) attachSeats(ctx context.Context, tickets []domain.Ticket) error {
	seatIDs := make([]int64, len(tickets))
	for i, t := range tickets {
		seatIDs[i] = t.SeatID
	}

	seats, err := s.repos.Seats.GetByIds(ctx, seatIDs)
	if err != nil {
		return fmt.Errorf("get ticket seats: %w", err)
	}

	byID := make(map[int64]*domain.Seat, len(seats))
	for i := range seats {
		byID[seats[i].ID] = &seats[i]
	}

	for i := range tickets {
		tickets[i].Seat = byID[tickets[i].SeatID]
	}

	return nil
}
