package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/metinatakli/ticket-booking-system/internal/seatlock"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	start = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	total = decimal.RequireFromString("200.00")
)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *miniredis.Miniredis, *testClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	clk := &testClock{now: start}
	opts = append([]Option{WithClock(clk)}, opts...)

	return NewManager(client, seatlock.NewRedisLocker(client), opts...), mr, clk
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	m, mr, _ := newTestManager(t)

	r, err := m.Create(ctx, 7, 3, []int64{10, 11}, total)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, int64(7), r.UserID)
	assert.Equal(t, int64(3), r.ShowID)
	assert.Equal(t, []int64{10, 11}, r.SeatIDs)
	assert.True(t, r.TotalAmount.Equal(total))
	assert.Equal(t, start, r.CreatedAt)
	assert.Equal(t, start.Add(DefaultTTL), r.ExpiresAt)
	assert.False(t, r.Degraded)

	assert.True(t, mr.Exists(Key(r.ID)))
	assert.Equal(t, DefaultTTL, mr.TTL(Key(r.ID)))

	for _, seatID := range r.SeatIDs {
		owner, err := mr.Get(seatlock.Key(seatID))
		require.NoError(t, err)
		assert.Equal(t, r.ID, owner)
	}
}

func TestCreate_SeatConflict(t *testing.T) {
	ctx := context.Background()
	m, mr, _ := newTestManager(t)

	first, err := m.Create(ctx, 1, 3, []int64{10, 11}, total)
	require.NoError(t, err)

	_, err = m.Create(ctx, 2, 3, []int64{11, 12}, total)
	assert.ErrorIs(t, err, domain.ErrSeatsLocked)

	assert.False(t, mr.Exists(seatlock.Key(12)))
	assert.Len(t, mr.Keys(), 3, "only the first reservation and its two seat locks")

	owner, err := mr.Get(seatlock.Key(11))
	require.NoError(t, err)
	assert.Equal(t, first.ID, owner)
}

func TestCreate_ConcurrentOverlappingRequests(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	seatSets := [][]int64{{1, 2, 3}, {3, 4, 5}}

	for i, seats := range seatSets {
		wg.Add(1)
		go func(i int, seats []int64) {
			defer wg.Done()
			_, errs[i] = m.Create(ctx, int64(i+1), 9, seats, total)
		}(i, seats)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrSeatsLocked)
			failures++
		}
	}

	assert.Equal(t, 1, failures)
}

func TestGet_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	m, mr, _ := newTestManager(t)

	r, err := m.Create(ctx, 1, 3, []int64{10}, total)
	require.NoError(t, err)

	mr.FastForward(299 * time.Second)

	got, err := m.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, got.TotalAmount.Equal(total))

	mr.FastForward(2 * time.Second)

	got, err = m.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	available, err := m.SeatsAvailable(ctx, []int64{10})
	require.NoError(t, err)
	assert.True(t, available)
}

func TestGet_UnknownReservation(t *testing.T) {
	m, _, _ := newTestManager(t)

	got, err := m.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	m, mr, _ := newTestManager(t)

	r, err := m.Create(ctx, 1, 3, []int64{10, 11}, total)
	require.NoError(t, err)

	require.NoError(t, m.Release(ctx, r.ID))

	assert.Empty(t, mr.Keys())

	// a second release and an unknown id are both no-ops
	assert.NoError(t, m.Release(ctx, r.ID))
	assert.NoError(t, m.Release(ctx, "does-not-exist"))

	_, err = m.Create(ctx, 2, 3, []int64{10, 11}, total)
	assert.NoError(t, err)
}

func TestHeld(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	_, err := m.Create(ctx, 1, 3, []int64{10, 12}, total)
	require.NoError(t, err)

	held, err := m.Held(ctx, []int64{10, 11, 12})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 12}, held)

	available, err := m.SeatsAvailable(ctx, []int64{11})
	require.NoError(t, err)
	assert.True(t, available)
}

func TestDegradedMode(t *testing.T) {
	ctx := context.Background()
	m, mr, clk := newTestManager(t)

	mr.Close()

	r, err := m.Create(ctx, 1, 3, []int64{10, 11}, total)
	require.NoError(t, err)
	assert.True(t, r.Degraded)

	_, err = m.Create(ctx, 2, 3, []int64{11}, total)
	assert.ErrorIs(t, err, domain.ErrSeatsLocked, "seats are still exclusive within the process")

	got, err := m.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, got.Degraded)

	held, err := m.Held(ctx, []int64{10, 11, 12})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 11}, held)

	require.NoError(t, m.Release(ctx, r.ID))

	got, err = m.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	r, err = m.Create(ctx, 2, 3, []int64{11}, total)
	require.NoError(t, err)

	clk.Advance(DefaultTTL)

	got, err = m.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "local reservations expire with the same TTL")
}

func TestCreate_LocalHoldSurvivesCacheRecovery(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	local := domain.Reservation{
		ID:        "held-during-outage",
		UserID:    1,
		ShowID:    3,
		SeatIDs:   []int64{10, 11},
		ExpiresAt: start.Add(DefaultTTL),
		Degraded:  true,
	}
	require.True(t, m.local.put(local, start))

	_, err := m.Create(ctx, 2, 3, []int64{11, 12}, total)
	assert.ErrorIs(t, err, domain.ErrSeatsLocked)

	locked, err := m.locker.Locked(ctx, []int64{11, 12})
	require.NoError(t, err)
	assert.Empty(t, locked, "cache locks are rolled back")

	r, err := m.Create(ctx, 2, 3, []int64{12}, total)
	require.NoError(t, err)
	assert.False(t, r.Degraded)
}

func TestDegradedModeDisabled(t *testing.T) {
	ctx := context.Background()
	m, mr, _ := newTestManager(t, WithDegradedMode(false))

	mr.Close()

	_, err := m.Create(ctx, 1, 3, []int64{10}, total)
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	_, err = m.Get(ctx, "any")
	assert.Error(t, err)
}

func TestCreate_PayloadWriteFailureReleasesLocks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	locker := &stubLocker{ok: true}
	m := NewManager(client, locker)

	mr.SetError("OOM command not allowed when used memory > 'maxmemory'")

	_, err := m.Create(context.Background(), 1, 3, []int64{10, 11}, total)

	assert.ErrorContains(t, err, "OOM")
	assert.Equal(t, []int64{10, 11}, locker.released)
}

type stubLocker struct {
	ok       bool
	released []int64
}

func (s *stubLocker) TryLock(context.Context, []int64, string) (bool, error) {
	return s.ok, nil
}

func (s *stubLocker) Release(_ context.Context, seatIDs []int64) error {
	s.released = append(s.released, seatIDs...)
	return nil
}

func (s *stubLocker) SeatsAvailable(context.Context, []int64) (bool, error) {
	return true, nil
}

func (s *stubLocker) Locked(context.Context, []int64) ([]int64, error) {
	return nil, nil
}
