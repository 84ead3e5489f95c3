package http

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimit applies a per-client token bucket to the wrapped handler,
// keyed by remote address. Intended for the booking-creation endpoint to
// keep one client from hammering the availability guard.
func RateLimit(next http.Handler, perSecond rate.Limit, burst int) http.Handler {
	limiters := &clientLimiters{
		perSecond: perSecond,
		burst:     burst,
		byClient:  make(map[string]*rate.Limiter),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiters.get(clientKey(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type clientLimiters struct {
	mu        sync.Mutex
	perSecond rate.Limit
	burst     int
	byClient  map[string]*rate.Limiter
}

func (c *clientLimiters) get(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	lim, ok := c.byClient[key]
	if !ok {
		lim = rate.NewLimiter(c.perSecond, c.burst)
		c.byClient[key] = lim
	}
	return lim
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
