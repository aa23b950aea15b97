// Package reservation issues short-lived seat holds. A reservation is a JSON
// payload under reservation:<id> plus one seat lock per seat, both expiring
// after the reservation TTL.
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/ticket-booking-system/internal/clock"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/metinatakli/ticket-booking-system/internal/seatlock"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const DefaultTTL = 300 * time.Second

const meterName = "github.com/metinatakli/ticket-booking-system/internal/reservation"

type Manager struct {
	client   redis.UniversalClient
	locker   seatlock.Locker
	local    *memoryStore
	clock    clock.Clock
	ttl      time.Duration
	logger   *slog.Logger
	degraded bool

	degradedCounter metric.Int64Counter
}

type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDegradedMode controls whether reservations fall back to process memory
// when the cache cannot be reached. It is on by default.
func WithDegradedMode(enabled bool) Option {
	return func(m *Manager) {
		m.degraded = enabled
	}
}

func NewManager(client redis.UniversalClient, locker seatlock.Locker, opts ...Option) *Manager {
	m := &Manager{
		client:   client,
		locker:   locker,
		local:    newMemoryStore(),
		clock:    clock.System{},
		ttl:      DefaultTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		degraded: true,
	}

	for _, opt := range opts {
		opt(m)
	}

	counter, err := otel.Meter(meterName).Int64Counter("reservations.degraded",
		metric.WithDescription("Reservations issued from process memory because the cache was unreachable"))
	if err != nil {
		m.logger.Error("failed to create degraded reservations counter", "error", err)
		counter = noop.Int64Counter{}
	}
	m.degradedCounter = counter

	return m
}

func Key(id string) string {
	return "reservation:" + id
}

// Create locks seatIDs and stores a reservation for them. It fails with
// domain.ErrSeatsLocked when any seat is held by another reservation.
func (m *Manager) Create(
	ctx context.Context,
	userID, showID int64,
	seatIDs []int64,
	totalAmount decimal.Decimal,
) (*domain.Reservation, error) {
	now := m.clock.Now()

	r := domain.Reservation{
		ID:          uuid.NewString(),
		UserID:      userID,
		ShowID:      showID,
		SeatIDs:     seatIDs,
		TotalAmount: totalAmount,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}

	ok, err := m.locker.TryLock(ctx, seatIDs, r.ID)
	if err != nil {
		if m.canDegrade(ctx, err) {
			return m.createLocal(ctx, r, err)
		}

		return nil, fmt.Errorf("lock seats: %w", err)
	}

	if !ok {
		return nil, domain.ErrSeatsLocked
	}

	// Holds issued from process memory during a cache outage stay binding
	// after the cache comes back.
	if m.degraded && len(m.local.heldSeats(seatIDs, now)) > 0 {
		m.releaseLocks(ctx, r)
		return nil, domain.ErrSeatsLocked
	}

	payload, err := json.Marshal(r)
	if err != nil {
		m.releaseLocks(ctx, r)
		return nil, fmt.Errorf("encode reservation: %w", err)
	}

	err = m.client.Set(ctx, Key(r.ID), payload, m.ttl).Err()
	if err != nil {
		m.releaseLocks(ctx, r)

		if m.canDegrade(ctx, err) {
			return m.createLocal(ctx, r, err)
		}

		return nil, fmt.Errorf("store reservation: %w", err)
	}

	return &r, nil
}

func (m *Manager) createLocal(ctx context.Context, r domain.Reservation, cause error) (*domain.Reservation, error) {
	r.Degraded = true

	if !m.local.put(r, m.clock.Now()) {
		return nil, domain.ErrSeatsLocked
	}

	m.degradedCounter.Add(ctx, 1)
	m.logger.Warn("reservation cache unavailable, holding reservation in process memory",
		"reservation_id", r.ID,
		"seat_ids", r.SeatIDs,
		"degraded", true,
		"error", cause)

	return &r, nil
}

// Get returns nil without error when the reservation expired or never
// existed.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	payload, err := m.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return m.getLocal(id), nil
		}

		if m.canDegrade(ctx, err) {
			m.logger.Warn("reservation cache unavailable, reading process memory",
				"reservation_id", id,
				"degraded", true,
				"error", err)
			return m.getLocal(id), nil
		}

		return nil, fmt.Errorf("get reservation: %w", err)
	}

	var r domain.Reservation
	err = json.Unmarshal(payload, &r)
	if err != nil {
		return nil, fmt.Errorf("decode reservation %s: %w", id, err)
	}

	return &r, nil
}

func (m *Manager) getLocal(id string) *domain.Reservation {
	if !m.degraded {
		return nil
	}

	r, ok := m.local.get(id, m.clock.Now())
	if !ok {
		return nil
	}

	return &r
}

// Release deletes the reservation and frees its seats. Releasing an unknown
// or expired reservation is a no-op.
func (m *Manager) Release(ctx context.Context, id string) error {
	r, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	if r == nil {
		return nil
	}

	if r.Degraded {
		m.local.delete(r.ID)
		return nil
	}

	err = errors.Join(
		m.client.Del(ctx, Key(r.ID)).Err(),
		m.locker.Release(ctx, r.SeatIDs),
	)
	if err != nil {
		return fmt.Errorf("release reservation %s: %w", r.ID, err)
	}

	return nil
}

// SeatsAvailable reports whether none of seatIDs is held by a live
// reservation.
func (m *Manager) SeatsAvailable(ctx context.Context, seatIDs []int64) (bool, error) {
	held, err := m.Held(ctx, seatIDs)
	if err != nil {
		return false, err
	}

	return len(held) == 0, nil
}

// Held returns the subset of seatIDs held by a live reservation.
func (m *Manager) Held(ctx context.Context, seatIDs []int64) ([]int64, error) {
	held, err := m.locker.Locked(ctx, seatIDs)
	if err != nil {
		if !m.canDegrade(ctx, err) {
			return nil, fmt.Errorf("check held seats: %w", err)
		}

		m.logger.Warn("reservation cache unavailable, reporting locally held seats only",
			"degraded", true,
			"error", err)
		held = nil
	}

	if !m.degraded {
		return held, nil
	}

	seen := make(map[int64]struct{}, len(held))
	for _, seatID := range held {
		seen[seatID] = struct{}{}
	}

	for _, seatID := range m.local.heldSeats(seatIDs, m.clock.Now()) {
		if _, ok := seen[seatID]; !ok {
			held = append(held, seatID)
		}
	}

	if held == nil {
		held = []int64{}
	}

	return held, nil
}

func (m *Manager) releaseLocks(ctx context.Context, r domain.Reservation) {
	err := m.locker.Release(context.WithoutCancel(ctx), r.SeatIDs)
	if err != nil {
		m.logger.Error("failed to release seat locks", "reservation_id", r.ID, "seat_ids", r.SeatIDs, "error", err)
	}
}

// canDegrade reports whether err means the cache is unreachable and degraded
// mode is on. Cancellation by the caller never degrades.
func (m *Manager) canDegrade(ctx context.Context, err error) bool {
	if !m.degraded || ctx.Err() != nil {
		return false
	}

	return unavailable(err)
}

func unavailable(err error) bool {
	if errors.Is(err, redis.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
