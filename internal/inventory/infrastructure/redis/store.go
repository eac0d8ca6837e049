package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/domain"
)

// decrementScript is the atomic check-and-decrement. Redis runs the whole
// script single-threadedly, so no other command interleaves between the GET
// and the DECR. Returns {1, new} on success, {0, current-or-zero} otherwise.
// redis.NewScript runs EVALSHA by digest and falls back to EVAL on NOSCRIPT.
var decrementScript = redis.NewScript(`
local stock = redis.call('GET', KEYS[1])
if stock and tonumber(stock) > 0 then
    local new = redis.call('DECR', KEYS[1])
    return {1, new}
end
return {0, tonumber(stock) or 0}
`)

// Store is the counter store adapter. It borrows the process-wide client
// (and its bounded connection pool) for the duration of each call.
type Store struct {
	log *slog.Logger
	rdb *redis.Client
}

func NewStore(log *slog.Logger, rdb *redis.Client) *Store {
	return &Store{log: log, rdb: rdb}
}

// Get returns the counter value and whether the key exists.
func (s *Store) Get(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: get %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	return v, true, nil
}

// Set overwrites the counter unconditionally.
func (s *Store) Set(ctx context.Context, key string, value int64) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	return nil
}

// DecrementIfPositive executes the atomic script against the counter. Only
// transport failures error; a depleted counter is a normal result.
func (s *Store) DecrementIfPositive(ctx context.Context, key string) (domain.DecrementResult, error) {
	raw, err := decrementScript.Run(ctx, s.rdb, []string{key}).Slice()
	if err != nil {
		return domain.DecrementResult{}, fmt.Errorf("%w: decrement %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	if len(raw) != 2 {
		return domain.DecrementResult{}, fmt.Errorf("%w: decrement %s: unexpected reply %v", domain.ErrStoreUnavailable, key, raw)
	}
	decremented, ok1 := raw[0].(int64)
	remaining, ok2 := raw[1].(int64)
	if !ok1 || !ok2 {
		return domain.DecrementResult{}, fmt.Errorf("%w: decrement %s: unexpected reply %v", domain.ErrStoreUnavailable, key, raw)
	}
	return domain.DecrementResult{Decremented: decremented == 1, Remaining: remaining}, nil
}

// InitIfAbsent seeds the counter only when the key does not exist yet, so a
// restart never clobbers a live sale. Reports whether the seed was applied.
func (s *Store) InitIfAbsent(ctx context.Context, key string, value int64) (bool, error) {
	set, err := s.rdb.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: setnx %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	if set {
		s.log.Info("stock seeded", "key", key, "value", value)
	}
	return set, nil
}

// Ping is the startup probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
