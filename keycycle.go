package keycycle

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ryhazerus/keycycle/source"
)

// Registry is the main entry point for the keycycle library. It maps pool
// names to pools, creating each pool from its key source on first use.
//
// A Registry is safe for concurrent use. Most programs create one at startup
// and pass it to whatever needs keys; tests create their own or call ResetAll
// between cases.
type Registry struct {
	source      source.Source
	log         zerolog.Logger
	now         func() time.Time
	defaults    Config
	configs     map[string]Config
	production  bool
	onExhausted func(string, error)

	mu    sync.RWMutex
	pools map[string]*Pool
}

// New creates a new Registry with the given options.
// If no source is provided, keys are read from the process environment.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:     zerolog.Nop(),
		now:     time.Now,
		configs: make(map[string]Config),
		pools:   make(map[string]*Pool),
	}
	for _, o := range opts {
		o(r)
	}
	if r.source == nil {
		r.source = source.Env{}
	}
	return r
}

// Pool returns the named pool, creating it from the key source if it does not
// exist yet. A new pool uses the config registered for its name with
// WithPoolConfig or WithSettings, or the registry default. An existing pool is
// returned unchanged.
//
// If the source yields no keys, Pool returns a *PoolError wrapping
// ErrNoKeysFound and nothing is registered.
func (r *Registry) Pool(ctx context.Context, name string) (*Pool, error) {
	canon, err := CanonicalName(name)
	if err != nil {
		return nil, err
	}

	if p := r.lookup(canon); p != nil {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have created it while we waited for the lock.
	if p, ok := r.pools[canon]; ok {
		return p, nil
	}

	cfg, ok := r.configs[canon]
	if !ok {
		cfg = r.defaults
	}
	p, err := r.build(ctx, canon, cfg)
	if err != nil {
		return nil, err
	}
	r.pools[canon] = p
	return p, nil
}

// Create builds a fresh pool for name with cfg, discarding any existing pool
// of that name. The old pool is removed even if building the new one fails.
func (r *Registry) Create(ctx context.Context, name string, cfg Config) (*Pool, error) {
	canon, err := CanonicalName(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.pools[canon]
	delete(r.pools, canon)

	p, err := r.build(ctx, canon, cfg)
	if err != nil {
		return nil, err
	}
	r.pools[canon] = p

	if replaced {
		r.log.Info().Str("pool", canon).Msg("pool replaced")
	}
	return p, nil
}

// build must be called with r.mu held.
func (r *Registry) build(ctx context.Context, name string, cfg Config) (*Pool, error) {
	keys, err := r.source.Keys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("keycycle: load keys for %s: %w", name, err)
	}

	p, err := NewPool(name, keys, cfg, PoolClock(r.now), PoolLogger(r.log))
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("pool", name).
		Int("keys", p.Len()).
		Dur("reset_interval", cfg.ResetInterval).
		Int64("ceiling", cfg.Ceiling).
		Msg("pool created")
	return p, nil
}

func (r *Registry) lookup(canon string) *Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pools[canon]
}

// GetKey returns the next usable key of the named pool, creating the pool on
// first use. It never waits for a key to become usable: if none is, it returns
// a *PoolError wrapping ErrExhausted or ErrRateLimited straight away.
func (r *Registry) GetKey(ctx context.Context, name string) (string, error) {
	p, err := r.Pool(ctx, name)
	if err != nil {
		return "", err
	}

	key, err := p.Select()
	if err != nil {
		r.log.Warn().Err(err).Str("pool", p.Name()).Msg("no usable key")
		if r.onExhausted != nil {
			r.onExhausted(p.Name(), err)
		}
		return "", err
	}
	return key, nil
}

// MarkKeyAsFailed flags key in the named pool so it is skipped until the pool
// resets. Unknown pools and keys are ignored.
func (r *Registry) MarkKeyAsFailed(name, key string) {
	canon, err := CanonicalName(name)
	if err != nil {
		return
	}
	p := r.lookup(canon)
	if p == nil {
		return
	}
	if p.MarkFailed(key) {
		r.log.Info().Str("pool", canon).Str("key", redact(key)).Msg("key marked failed")
	}
}

// DebugState returns a copy of the named pool's state, or nil if the pool does
// not exist. In production mode it returns ErrDebugUnavailable.
func (r *Registry) DebugState(name string) (*Snapshot, error) {
	if r.production {
		return nil, ErrDebugUnavailable
	}
	canon, err := CanonicalName(name)
	if err != nil {
		return nil, err
	}
	p := r.lookup(canon)
	if p == nil {
		return nil, nil
	}
	s := p.Snapshot()
	return &s, nil
}

// Snapshot returns a copy of every pool's state ordered by pool name. In
// production mode it returns ErrDebugUnavailable.
func (r *Registry) Snapshot() ([]Snapshot, error) {
	if r.production {
		return nil, ErrDebugUnavailable
	}

	r.mu.RLock()
	pools := make([]*Pool, 0, len(r.pools))
	for _, p := range r.pools {
		pools = append(pools, p)
	}
	r.mu.RUnlock()

	sort.Slice(pools, func(i, j int) bool { return pools[i].Name() < pools[j].Name() })

	out := make([]Snapshot, len(pools))
	for i, p := range pools {
		out[i] = p.Snapshot()
	}
	return out, nil
}

// Pools returns the names of all registered pools in sorted order.
func (r *Registry) Pools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.pools))
	for name := range r.pools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ResetAll drops every pool. The key source is left untouched; the next
// reference to a pool name reads its keys again.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools = make(map[string]*Pool)
}

// Close releases resources held by the registry's key source.
func (r *Registry) Close() error {
	if c, ok := r.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Cycler is a handle bound to a single pool name.
type Cycler struct {
	registry *Registry
	name     string
}

// CreateCycler replaces the named pool with a fresh one built with cfg and
// returns a handle bound to it.
func (r *Registry) CreateCycler(ctx context.Context, name string, cfg Config) (*Cycler, error) {
	p, err := r.Create(ctx, name, cfg)
	if err != nil {
		return nil, err
	}
	return &Cycler{registry: r, name: p.Name()}, nil
}

// Name returns the canonical pool name.
func (c *Cycler) Name() string { return c.name }

// GetKey is Registry.GetKey for the bound pool. If the pool was dropped by
// ResetAll it is recreated with the registry's configured policy.
func (c *Cycler) GetKey(ctx context.Context) (string, error) {
	return c.registry.GetKey(ctx, c.name)
}

// MarkKeyAsFailed is Registry.MarkKeyAsFailed for the bound pool.
func (c *Cycler) MarkKeyAsFailed(key string) {
	c.registry.MarkKeyAsFailed(c.name, key)
}

// DebugState is Registry.DebugState for the bound pool.
func (c *Cycler) DebugState() (*Snapshot, error) {
	return c.registry.DebugState(c.name)
}

// redact keeps enough of a key to tell keys apart in logs.
func redact(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
