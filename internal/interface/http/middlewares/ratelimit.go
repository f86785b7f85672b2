package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	idleTTL        = 10 * time.Minute
	evictionPeriod = 512
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type callerLimiter struct {
	limit rate.Limit
	burst int

	lock    sync.Mutex
	byKey   map[string]*limiterEntry
	counter uint64
}

func (l *callerLimiter) allow(key string, now time.Time) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.counter++
	if l.counter%evictionPeriod == 0 {
		cutoff := now.Add(-idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// RateLimit applies a token bucket per caller, falling back to the client
// ip for anonymous requests. It is a no-op if rps or burst is not positive.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 || burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	l := &callerLimiter{
		limit: rate.Limit(rps),
		burst: burst,
		byKey: make(map[string]*limiterEntry),
	}
	return func(c *gin.Context) {
		key := Caller(c)
		if len(key) <= 0 {
			key = c.ClientIP()
		}
		if !l.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
