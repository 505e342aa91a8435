package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	appErrors "github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/utils/response"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  3 * time.Minute,
	}
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}

	v.lastSeen = time.Now()

	return v.limiter
}

// Sweep drops visitors idle for longer than the idle TTL and returns how many were removed.
func (l *IPRateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0

	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, ip)
			removed++
		}
	}

	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (l *IPRateLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := l.Sweep(now); n > 0 {
				slog.Debug("Rate limiter swept idle visitors", slog.Int("removed", n))
			}
		}
	}
}

// retryAfterSeconds is the time to refill one token.
func (l *IPRateLimiter) retryAfterSeconds() int {
	if l.limit <= 0 {
		return 1
	}

	return max(int(math.Ceil(1/float64(l.limit))), 1)
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		limiter := l.limiterFor(ip)
		if !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			response.Error(w, appErrors.TooManyRequestsError("Too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
