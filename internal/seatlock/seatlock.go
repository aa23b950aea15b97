// Package seatlock keeps per-seat exclusive locks in redis. A seat lock is a
// key seat_lock:<seatID> whose value is the owning reservation id and which
// expires on its own after the lock TTL.
package seatlock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 300 * time.Second

const lockedErrPrefix = "seat already locked"

// Locker is the narrow interface the reservation layer needs from the cache.
type Locker interface {
	// TryLock locks every seat for reservationID or none of them. It returns
	// false without error when at least one seat is already locked.
	TryLock(ctx context.Context, seatIDs []int64, reservationID string) (bool, error)
	// Release deletes the locks of the given seats. Missing locks are ignored.
	Release(ctx context.Context, seatIDs []int64) error
	// SeatsAvailable reports whether none of the seats has a live lock.
	SeatsAvailable(ctx context.Context, seatIDs []int64) (bool, error)
	// Locked returns the subset of seatIDs that currently hold a live lock.
	Locked(ctx context.Context, seatIDs []int64) ([]int64, error)
}

type Strategy string

const (
	// StrategyAtomic checks and sets all seat keys in one Lua script.
	StrategyAtomic Strategy = "atomic"
	// StrategySequential sets seat keys one by one with SET NX and deletes the
	// ones it already holds when it meets a locked seat. Two callers can each
	// hold a prefix of an overlapping seat list for a moment before one backs
	// off, but it works against redis cluster where the script cannot.
	StrategySequential Strategy = "sequential"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAtomic, StrategySequential:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown seat lock strategy %q (want atomic|sequential)", s)
	}
}

var lockSeatsScript = redis.NewScript(`
    -- KEYS = seat lock keys (e.g., seat_lock:1, seat_lock:2 etc.)
    -- ARGV = [reservationID, ttl]

    for i=1, #KEYS do
        if redis.call("EXISTS", KEYS[i]) == 1 then
            return {err = "seat already locked " .. KEYS[i]}
        end
    end

    for i=1, #KEYS do
        redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
    end

    return "OK"
`)

type RedisLocker struct {
	client   redis.UniversalClient
	strategy Strategy
	ttl      time.Duration
	logger   *slog.Logger
}

type Option func(*RedisLocker)

func WithStrategy(s Strategy) Option {
	return func(l *RedisLocker) {
		if s != "" {
			l.strategy = s
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *RedisLocker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewRedisLocker(client redis.UniversalClient, opts ...Option) *RedisLocker {
	l := &RedisLocker{
		client:   client,
		strategy: StrategyAtomic,
		ttl:      DefaultTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func Key(seatID int64) string {
	return "seat_lock:" + strconv.FormatInt(seatID, 10)
}

func keys(seatIDs []int64) []string {
	keys := make([]string, len(seatIDs))
	for i, seatID := range seatIDs {
		keys[i] = Key(seatID)
	}

	return keys
}

func (l *RedisLocker) TryLock(ctx context.Context, seatIDs []int64, reservationID string) (bool, error) {
	if len(seatIDs) == 0 {
		return true, nil
	}

	if l.strategy == StrategySequential {
		return l.tryLockSequential(ctx, seatIDs, reservationID)
	}

	return l.tryLockAtomic(ctx, seatIDs, reservationID)
}

func (l *RedisLocker) tryLockAtomic(ctx context.Context, seatIDs []int64, reservationID string) (bool, error) {
	err := lockSeatsScript.Run(ctx, l.client, keys(seatIDs), reservationID, int(l.ttl.Seconds())).Err()
	if err != nil {
		if redis.HasErrorPrefix(err, lockedErrPrefix) {
			l.logger.Warn("seat lock conflict", "reservation_id", reservationID, "detail", err.Error())
			return false, nil
		}

		return false, fmt.Errorf("run lock seats script: %w", err)
	}

	return true, nil
}

func (l *RedisLocker) tryLockSequential(ctx context.Context, seatIDs []int64, reservationID string) (bool, error) {
	acquired := make([]int64, 0, len(seatIDs))

	for _, seatID := range seatIDs {
		ok, err := l.client.SetNX(ctx, Key(seatID), reservationID, l.ttl).Result()
		if err != nil {
			l.rollback(ctx, acquired)
			return false, fmt.Errorf("lock seat %d: %w", seatID, err)
		}

		if !ok {
			l.logger.Warn("seat is already locked, releasing seats locked in this call",
				"seat_id", seatID,
				"reservation_id", reservationID,
				"released", len(acquired))
			l.rollback(ctx, acquired)
			return false, nil
		}

		acquired = append(acquired, seatID)
	}

	return true, nil
}

// rollback runs even if the caller's context was cancelled halfway through
// locking, otherwise the acquired locks would stay until they expire.
func (l *RedisLocker) rollback(ctx context.Context, seatIDs []int64) {
	if len(seatIDs) == 0 {
		return
	}

	err := l.Release(context.WithoutCancel(ctx), seatIDs)
	if err != nil {
		l.logger.Error("failed to rollback seat locks", "seat_ids", seatIDs, "error", err)
	}
}

func (l *RedisLocker) Release(ctx context.Context, seatIDs []int64) error {
	if len(seatIDs) == 0 {
		return nil
	}

	cmds, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, seatID := range seatIDs {
			pipe.Del(ctx, Key(seatID))
		}
		return nil
	})
	if err != nil {
		errs := make([]error, 0, len(cmds))
		for _, cmd := range cmds {
			if cmd.Err() != nil {
				errs = append(errs, cmd.Err())
			}
		}

		if len(errs) == 0 {
			return fmt.Errorf("release seat locks: %w", err)
		}

		return fmt.Errorf("release seat locks: %w", errors.Join(errs...))
	}

	return nil
}

func (l *RedisLocker) SeatsAvailable(ctx context.Context, seatIDs []int64) (bool, error) {
	locked, err := l.Locked(ctx, seatIDs)
	if err != nil {
		return false, err
	}

	return len(locked) == 0, nil
}

func (l *RedisLocker) Locked(ctx context.Context, seatIDs []int64) ([]int64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	existsCmds := make([]*redis.IntCmd, len(seatIDs))

	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, seatID := range seatIDs {
			existsCmds[i] = pipe.Exists(ctx, Key(seatID))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check seat locks: %w", err)
	}

	locked := make([]int64, 0)
	for i, cmd := range existsCmds {
		if cmd.Val() == 1 {
			locked = append(locked, seatIDs[i])
		}
	}

	return locked, nil
}
