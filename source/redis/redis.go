// Package redis provides a keycycle key source backed by Redis.
package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/ryhazerus/keycycle/source"
)

// Compile-time interface check.
var _ source.Source = (*Source)(nil)

// Source reads a pool's keys from the Redis hash "keycycle:<pool>". Hash
// fields name the credentials and fix their order; hash values are the
// credentials themselves.
type Source struct {
	client *redis.Client
	prefix string
}

// New creates a Redis-backed key source.
func New(client *redis.Client) *Source {
	return &Source{client: client, prefix: "keycycle:"}
}

// Keys returns the pool's non-empty credentials ordered by field name.
func (s *Source) Keys(ctx context.Context, pool string) ([]string, error) {
	vals, err := s.client.HGetAll(ctx, s.redisKey(pool)).Result()
	if err != nil {
		return nil, fmt.Errorf("keycycle/source/redis: keys %s: %w", pool, err)
	}

	names := make([]string, 0, len(vals))
	for name, v := range vals {
		if v != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = vals[name]
	}
	return out, nil
}

// Put stores or replaces the credential called name in pool.
func (s *Source) Put(ctx context.Context, pool, name, value string) error {
	if err := s.client.HSet(ctx, s.redisKey(pool), name, value).Err(); err != nil {
		return fmt.Errorf("keycycle/source/redis: put %s/%s: %w", pool, name, err)
	}
	return nil
}

// Delete removes every credential of pool.
func (s *Source) Delete(ctx context.Context, pool string) error {
	return s.client.Del(ctx, s.redisKey(pool)).Err()
}

// Close closes the underlying Redis client.
func (s *Source) Close() error {
	return s.client.Close()
}

func (s *Source) redisKey(pool string) string {
	return s.prefix + pool
}
