package source

import (
	"context"
	"errors"
	"io"
)

// Compile-time interface check.
var _ Source = Chain(nil)

// Chain consults its sources in order and returns the keys of the first one
// that yields any. A source error stops the search, so a broken backend is
// never masked by a later, possibly stale, one.
//
// A typical chain puts Env first so operators can override keys stored in
// SQLite or Redis without touching the database.
type Chain []Source

// Keys returns the first non-empty result.
func (c Chain) Keys(ctx context.Context, pool string) ([]string, error) {
	for _, s := range c {
		keys, err := s.Keys(ctx, pool)
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			return keys, nil
		}
	}
	return nil, nil
}

// Close closes every source in the chain that implements io.Closer.
func (c Chain) Close() error {
	var errs []error
	for _, s := range c {
		if cl, ok := s.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}
