package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "washbook/pkg/errors"
	httputil "washbook/pkg/http"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyStore keeps completed responses for the key TTL.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool)
	Set(ctx context.Context, key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode  int         `json:"status_code"`
	Headers     http.Header `json:"headers"`
	Body        []byte      `json:"body"`
	Fingerprint string      `json:"fingerprint"`
	CreatedAt   time.Time   `json:"created_at"`
}

type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*CachedResponse
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*CachedResponse),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.sweep(min(ttl, time.Hour))
	return s
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.expired(entry, time.Now()) {
		delete(s.entries, key)
		return nil, false
	}
	return entry, true
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()

	s.mu.Lock()
	s.entries[key] = response
	s.mu.Unlock()
}

func (s *InMemoryIdempotencyStore) expired(entry *CachedResponse, now time.Time) bool {
	return now.Sub(entry.CreatedAt) > s.ttl
}

func (s *InMemoryIdempotencyStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if s.expired(entry, now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Stop may be called more than once.
func (s *InMemoryIdempotencyStore) Stop() {
	s.once.Do(func() { close(s.done) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first 2xx response recorded for an Idempotency-Key.
// A key belongs to one customer, method and path. Reusing it with a different
// body is rejected, and a duplicate that arrives while the original is still
// running gets CONFLICT.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyKeyHeader
	}

	var inFlight sync.Map

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get(headerName))
			if header == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			fingerprint, err := fingerprintBody(r)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					_ = httputil.WriteError(w, apperrors.PayloadTooLarge(tooLarge.Limit))
					return
				}
				_ = httputil.WriteError(w, apperrors.InvalidInput("failed to read request body"))
				return
			}

			key := strings.Join([]string{DefaultCustomerExtractor(r), r.Method, r.URL.Path, header}, "|")

			if cached, found := store.Get(r.Context(), key); found {
				if cached.Fingerprint != "" && cached.Fingerprint != fingerprint {
					_ = httputil.WriteError(w, apperrors.InvalidInput("Idempotency-Key was already used with a different request body"))
					return
				}
				replayCachedResponse(w, cached)
				return
			}

			if _, busy := inFlight.LoadOrStore(key, struct{}{}); busy {
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is already in progress"))
				return
			}
			defer inFlight.Delete(key)

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(capture, r)

			if capture.statusCode < 200 || capture.statusCode >= 300 {
				return
			}
			store.Set(context.WithoutCancel(r.Context()), key, &CachedResponse{
				StatusCode:  capture.statusCode,
				Headers:     w.Header().Clone(),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			})
		})
	}
}

// fingerprintBody hashes the request body and restores it for the handler.
func fingerprintBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
