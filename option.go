package keycycle

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ryhazerus/keycycle/source"
)

// Option configures the Registry.
type Option func(*Registry)

// WithSource sets where pools read their keys from.
// If not provided, keys are read from the process environment (source.Env).
func WithSource(s source.Source) Option {
	return func(r *Registry) {
		r.source = s
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithClock replaces time.Now for reset-interval bookkeeping. Tests use it to
// simulate the passage of time.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithDefaultConfig sets the policy for pools created implicitly through
// Pool or GetKey that have no per-pool config.
func WithDefaultConfig(cfg Config) Option {
	return func(r *Registry) {
		r.defaults = cfg
	}
}

// WithPoolConfig sets the policy used when the named pool is created
// implicitly. It has no effect on a pool that already exists.
func WithPoolConfig(name string, cfg Config) Option {
	return func(r *Registry) {
		if canon, err := CanonicalName(name); err == nil {
			r.configs[canon] = cfg
		}
	}
}

// WithSettings applies a loaded settings file: the production flag and every
// per-pool config.
func WithSettings(s *Settings) Option {
	return func(r *Registry) {
		if s == nil {
			return
		}
		r.production = s.Production
		for name, cfg := range s.Pools {
			r.configs[name] = cfg
		}
	}
}

// WithProduction disables DebugState, which then returns ErrDebugUnavailable.
func WithProduction(production bool) Option {
	return func(r *Registry) {
		r.production = production
	}
}

// WithOnExhausted sets a callback that fires whenever GetKey finds no usable
// key in a pool. err wraps ErrExhausted or ErrRateLimited.
func WithOnExhausted(fn func(pool string, err error)) Option {
	return func(r *Registry) {
		r.onExhausted = fn
	}
}
