package source

import "context"

// Source enumerates the credentials for a pool. The pool name is the
// registry's canonical form (trimmed, lower-case). The returned order must be
// deterministic because it fixes the pool's rotation order. Returning no keys
// is not an error; the registry reports that as keycycle.ErrNoKeysFound.
type Source interface {
	Keys(ctx context.Context, pool string) ([]string, error)
}

// Func adapts a plain function to the Source interface.
type Func func(ctx context.Context, pool string) ([]string, error)

// Keys calls f.
func (f Func) Keys(ctx context.Context, pool string) ([]string, error) {
	return f(ctx, pool)
}
