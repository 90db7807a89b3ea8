// Package fakeapi is a stand-in for a remote API that enforces its own
// per-key request limit. It exists for examples and integration tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultCeiling is the number of requests each key may make when no
// refill rate is configured.
const DefaultCeiling = 5

// Response is the body of a successful request.
type Response struct {
	KeyUsed   string `json:"key_used"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Option configures a Server.
type Option func(*Server)

// WithCeiling sets the per-key burst. With no refill it is a hard ceiling.
func WithCeiling(n int) Option {
	return func(s *Server) { s.ceiling = n }
}

// WithRefill lets each key regain requests at the given rate per second.
func WithRefill(perSecond float64) Option {
	return func(s *Server) { s.refill = rate.Limit(perSecond) }
}

// WithHeader sets the request header the key is read from.
func WithHeader(name string) Option {
	return func(s *Server) { s.header = name }
}

// Server implements http.Handler. POST /speak succeeds while the key in the
// configured header is under its limit and answers 429 afterwards.
type Server struct {
	header  string
	ceiling int
	refill  rate.Limit
	mux     *http.ServeMux

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	usage    map[string]int64
}

// New creates a Server. By default the key is read from the xi-api-key
// header and each key may make DefaultCeiling requests, ever.
func New(opts ...Option) *Server {
	s := &Server{
		header:   "xi-api-key",
		ceiling:  DefaultCeiling,
		limiters: make(map[string]*rate.Limiter),
		usage:    make(map[string]int64),
	}
	for _, o := range opts {
		o(s)
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /speak", s.speak)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) speak(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(s.header))
	key = strings.TrimPrefix(key, "Bearer ")
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing " + s.header + " header"})
		return
	}

	if !s.allow(key) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit exceeded for key " + key})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		KeyUsed:   key,
		Message:   "Success",
		RequestID: uuid.NewString(),
	})
}

func (s *Server) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(s.refill, s.ceiling)
		s.limiters[key] = lim
	}
	if !lim.Allow() {
		return false
	}
	s.usage[key]++
	return true
}

// Usage returns how many requests key has had accepted since the last Reset.
func (s *Server) Usage(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage[key]
}

// Reset forgets every key's usage.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters = make(map[string]*rate.Limiter)
	s.usage = make(map[string]int64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
