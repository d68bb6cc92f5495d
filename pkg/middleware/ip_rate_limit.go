package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "washbook/pkg/errors"
	httputil "washbook/pkg/http"
	"washbook/pkg/logger"
)

// AnonymousRateLimiter is a token bucket per client IP for requests that carry
// no X-Customer-ID, such as availability browsing.
type AnonymousRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewAnonymousRateLimiter(perSecond float64, burst int, log *logger.Logger) *AnonymousRateLimiter {
	rl := &AnonymousRateLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		log:      log,
		stopCh:   make(chan struct{}),
	}
	go rl.evictIdle()
	return rl
}

func (rl *AnonymousRateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *AnonymousRateLimiter) evictIdle() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, entry := range rl.limiters {
				if now.Sub(entry.lastSeen) > rl.idle {
					delete(rl.limiters, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *AnonymousRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// AnonymousRateLimit leaves identified customers to CustomerRateLimit.
func AnonymousRateLimit(limiter *AnonymousRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if DefaultCustomerExtractor(r) != "" {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			reservation := limiter.get(ip).Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				limiter.log.Warn("Anonymous rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"client_ip", ip,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(max(int(delay.Seconds()), 1)))
				_ = httputil.WriteError(w, apperrors.RateLimited("Rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
