package keycycle

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type keyState struct {
	value  string
	usage  int64
	failed bool
}

// Pool is an ordered, fixed set of keys for one external API together with a
// rotation cursor and an optional reset policy. It is safe for concurrent use:
// every method runs as a single critical section under the pool's lock.
type Pool struct {
	name string
	cfg  Config
	now  func() time.Time
	log  zerolog.Logger

	mu        sync.Mutex
	keys      []keyState
	index     map[string]int
	cursor    int
	lastReset time.Time
}

// PoolOption configures a Pool created with NewPool.
type PoolOption func(*Pool)

// PoolClock sets the time source used for the reset policy.
func PoolClock(now func() time.Time) PoolOption {
	return func(p *Pool) {
		if now != nil {
			p.now = now
		}
	}
}

// PoolLogger sets the logger a pool reports resets to.
func PoolLogger(l zerolog.Logger) PoolOption {
	return func(p *Pool) {
		p.log = l
	}
}

// NewPool builds a pool from an ordered list of keys. The order fixes the
// rotation order. Empty values are ignored and duplicates keep their first
// position. A pool needs at least one key; otherwise a *PoolError wrapping
// ErrNoKeysFound is returned.
func NewPool(name string, keys []string, cfg Config, opts ...PoolOption) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		name:  name,
		cfg:   cfg,
		now:   time.Now,
		log:   zerolog.Nop(),
		index: make(map[string]int, len(keys)),
	}
	for _, o := range opts {
		o(p)
	}

	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := p.index[k]; dup {
			continue
		}
		p.index[k] = len(p.keys)
		p.keys = append(p.keys, keyState{value: k})
	}
	if len(p.keys) == 0 {
		return nil, &PoolError{Pool: name, Err: ErrNoKeysFound}
	}

	p.lastReset = p.now()
	return p, nil
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Len returns the number of keys in the pool.
func (p *Pool) Len() int { return len(p.keys) }

// Config returns the pool's selection policy.
func (p *Pool) Config() Config { return p.cfg }

// Select returns the next usable key in round-robin order.
//
// If the reset interval has elapsed, all usage counters and failed flags are
// cleared first. The cursor then advances once per candidate inspected,
// whether or not the candidate is usable, and at most Len candidates are
// inspected. The returned key's usage counter is incremented.
//
// When no key is usable Select returns a *PoolError wrapping ErrRateLimited
// (pools with a ceiling) or ErrExhausted (pools without one). No key state
// changes in that case.
func (p *Pool) Select() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetIfDue(p.now())

	n := len(p.keys)
	for attempt := 0; attempt < n; attempt++ {
		idx := p.cursor
		p.cursor = (p.cursor + 1) % n

		k := &p.keys[idx]
		if !p.usable(k) {
			continue
		}
		k.usage++
		return k.value, nil
	}

	err := &PoolError{Pool: p.name, Err: p.cfg.exhaustedErr()}
	if p.cfg.ResetInterval > 0 {
		err.ResetAt = p.lastReset.Add(p.cfg.ResetInterval)
	}
	return "", err
}

func (p *Pool) usable(k *keyState) bool {
	if k.failed {
		return false
	}
	return p.cfg.Ceiling <= 0 || k.usage < p.cfg.Ceiling
}

// resetIfDue must be called with p.mu held.
func (p *Pool) resetIfDue(now time.Time) {
	if p.cfg.ResetInterval <= 0 {
		return
	}
	if now.Sub(p.lastReset) < p.cfg.ResetInterval {
		return
	}
	p.clear(now)
	p.log.Debug().
		Str("pool", p.name).
		Dur("interval", p.cfg.ResetInterval).
		Msg("pool reset")
}

// clear must be called with p.mu held.
func (p *Pool) clear(now time.Time) {
	for i := range p.keys {
		p.keys[i].usage = 0
		p.keys[i].failed = false
	}
	p.lastReset = now
}

// MarkFailed flags key so Select skips it until the next reset. It reports
// whether the key belongs to the pool; unknown keys are ignored.
func (p *Pool) MarkFailed(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.index[key]
	if !ok {
		return false
	}
	p.keys[idx].failed = true
	return true
}

// Reset clears every usage counter and failed flag immediately and restarts
// the reset interval. The cursor is left where it is.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clear(p.now())
}

// KeyStatus is a point-in-time view of one key.
type KeyStatus struct {
	Value  string
	Usage  int64
	Failed bool
}

// Snapshot is a detached copy of a pool's state. Changing it has no effect on
// the pool.
type Snapshot struct {
	Pool          string
	Cursor        int
	Keys          []KeyStatus
	LastReset     time.Time
	ResetInterval time.Duration
	Ceiling       int64
}

// Snapshot returns a copy of the pool's cursor and key states.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := Snapshot{
		Pool:          p.name,
		Cursor:        p.cursor,
		Keys:          make([]KeyStatus, len(p.keys)),
		LastReset:     p.lastReset,
		ResetInterval: p.cfg.ResetInterval,
		Ceiling:       p.cfg.Ceiling,
	}
	for i, k := range p.keys {
		out.Keys[i] = KeyStatus{Value: k.value, Usage: k.usage, Failed: k.failed}
	}
	return out
}
