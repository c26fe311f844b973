package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/recon/internal/core"
	"golang.org/x/time/rate"
)

// errRateLimited maps to REQ004.
var errRateLimited = errors.New("rate limit exceeded")

const (
	// visitorTTL is how long an idle client keeps its bucket.
	visitorTTL = 3 * time.Minute

	sweepInterval = time.Minute
)

// rateLimiter keeps a token bucket per client IP. A client may burst up to
// the per-minute limit, then refills evenly over the minute.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter allows perMinute requests per minute per IP. A limit of
// zero or less disables limiting.
func newRateLimiter(perMinute int) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Inf,
		now:      time.Now,
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	return rl
}

// allow consumes a token for ip and reports whether one was available.
func (rl *rateLimiter) allow(ip string) bool {
	if rl.limit == rate.Inf {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for longer than visitorTTL.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorTTL)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// size returns the number of tracked clients.
func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// run sweeps periodically until ctx is done.
func (rl *rateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// retryAfter is the whole number of seconds until one token refills.
func (rl *rateLimiter) retryAfter() string {
	secs := int(time.Duration(float64(time.Second) / float64(rl.limit)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// middleware rejects requests from clients over their limit. It runs after
// TrustedRealIP, so RemoteAddr already holds the client address.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", rl.retryAfter())
			respondError(w, r, errRateLimited, core.DefaultLanguage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
