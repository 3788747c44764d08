package middleware

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Throttle keeps one token bucket per key. Idle buckets expire, so a key
// that stops hammering eventually starts over with a full burst.
type Throttle struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

func NewThrottle(perSecond float64, burst int, idle time.Duration) *Throttle {
	return &Throttle{
		limiters: cache.New(idle, 2*idle),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (t *Throttle) Allow(key string) bool {
	if v, ok := t.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		t.limiters.SetDefault(key, l)
		return l.Allow()
	}

	l := rate.NewLimiter(t.limit, t.burst)
	if err := t.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		// lost the race; use the bucket that won
		if v, ok := t.limiters.Get(key); ok {
			l = v.(*rate.Limiter)
		}
	}
	return l.Allow()
}

// Middleware rejects requests whose key has exhausted its bucket.
func (t *Throttle) Middleware(key func(*http.Request) string, limited func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !t.Allow(key(r)) {
				limited(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
