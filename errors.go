package keycycle

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoKeysFound is returned when a key source yields no credentials for a pool.
	ErrNoKeysFound = errors.New("keycycle: no keys found")
	// ErrExhausted is returned by Select when every key in a pool without a
	// usage ceiling has been marked failed.
	ErrExhausted = errors.New("keycycle: all keys exhausted")
	// ErrRateLimited is returned by Select when every key in a pool with a usage
	// ceiling is either failed or at its ceiling.
	ErrRateLimited = errors.New("keycycle: all keys rate limited")
	// ErrDebugUnavailable is returned by DebugState when the registry runs in
	// production mode.
	ErrDebugUnavailable = errors.New("keycycle: debug state is unavailable in production mode")
	// ErrInvalidPoolName is returned for an empty pool name.
	ErrInvalidPoolName = errors.New("keycycle: invalid pool name")
)

// PoolError reports which pool an operation failed for. It unwraps to one of
// ErrNoKeysFound, ErrExhausted or ErrRateLimited.
type PoolError struct {
	Pool string
	// ResetAt is the time of the pool's next scheduled reset. It is zero for
	// pools without a reset interval and for ErrNoKeysFound.
	ResetAt time.Time
	Err     error
}

func (e *PoolError) Error() string {
	switch e.Err {
	case ErrNoKeysFound:
		return fmt.Sprintf("keycycle: no keys found for %s", e.Pool)
	case ErrExhausted:
		return fmt.Sprintf("keycycle: all keys for %s are exhausted", e.Pool)
	case ErrRateLimited:
		return fmt.Sprintf("keycycle: all keys for %s are rate limited", e.Pool)
	default:
		return fmt.Sprintf("keycycle: pool %s: %v", e.Pool, e.Err)
	}
}

func (e *PoolError) Unwrap() error {
	return e.Err
}

// Wait blocks until the pool's next scheduled reset or until ctx is done.
// It returns immediately when the pool has no reset interval. Select never
// waits on its own; this is for callers that would rather sleep than fail.
func (e *PoolError) Wait(ctx context.Context) error {
	if e.ResetAt.IsZero() {
		return nil
	}
	delay := time.Until(e.ResetAt)
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
