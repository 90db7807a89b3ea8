package keycycle

import (
	"io"
	"net/http"
)

// TransportOption configures a Transport.
type TransportOption func(*transport)

// WithHeader sets the request header that carries the key and a prefix
// written before it. The default is "Authorization" with prefix "Bearer ".
func WithHeader(name, prefix string) TransportOption {
	return func(t *transport) {
		t.header = name
		t.prefix = prefix
	}
}

// WithOverLimit sets how the transport recognises a response saying the key
// is over its limit. The default matches 429 Too Many Requests.
func WithOverLimit(fn func(*http.Response) bool) TransportOption {
	return func(t *transport) {
		if fn != nil {
			t.overLimit = fn
		}
	}
}

// transport implements http.RoundTripper. It picks a key from its pool for
// every request and, when the remote side answers that the key is over its
// limit, marks the key failed and retries with the next one.
type transport struct {
	registry  *Registry
	pool      string
	base      http.RoundTripper
	header    string
	prefix    string
	overLimit func(*http.Response) bool
}

// Transport wraps an http.RoundTripper so that every request made through it
// carries a key from the named pool.
//
// On an over-limit response the key is marked failed and the request is sent
// again with the next key, as long as the body can be replayed (no body, or
// Request.GetBody set). When the pool has no usable key left the round trip
// fails with the pool's *PoolError. The last over-limit response is returned
// as-is once every key of the pool has been tried.
func (r *Registry) Transport(pool string, base http.RoundTripper, opts ...TransportOption) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &transport{
		registry:  r,
		pool:      pool,
		base:      base,
		header:    "Authorization",
		prefix:    "Bearer ",
		overLimit: func(resp *http.Response) bool { return resp.StatusCode == http.StatusTooManyRequests },
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	p, err := t.registry.Pool(ctx, t.pool)
	if err != nil {
		return nil, err
	}
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	n := p.Len()
	for attempt := 0; ; attempt++ {
		key, err := t.registry.GetKey(ctx, t.pool)
		if err != nil {
			return nil, err
		}

		out := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			out.Body = body
		}
		out.Header.Set(t.header, t.prefix+key)

		resp, err := t.base.RoundTrip(out)
		if err != nil {
			return nil, err
		}
		if !t.overLimit(resp) {
			return resp, nil
		}

		t.registry.MarkKeyAsFailed(t.pool, key)
		t.registry.log.Warn().
			Str("pool", p.Name()).
			Str("key", redact(key)).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Msg("key over limit, rotating")

		if !replayable || attempt+1 >= n {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
