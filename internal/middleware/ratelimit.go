package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/dctmd-mcp-server/internal/domain"
)

// clientIdleTTL is how long an untouched client bucket is retained
const clientIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	logger  *logrus.Logger
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients map[string]*clientLimiter
	swept   time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per client with the given burst
func NewRateLimiter(rps float64, burst int, logger *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		logger:  logger,
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow reports whether the client may make a request now
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	cl, ok := rl.clients[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep drops idle buckets; must hold rl.mu
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.swept) < clientIdleTTL {
		return
	}
	for id, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > clientIdleTTL {
			delete(rl.clients, id)
		}
	}
	rl.swept = now
}

// Clients returns the number of tracked clients
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if rl.Allow(clientIP) {
			c.Next()
			return
		}

		if rl.logger != nil {
			rl.logger.WithFields(logrus.Fields{
				"client_ip":      clientIP,
				"path":           c.FullPath(),
				"correlation_id": c.GetString(CorrelationIDKey),
			}).Warn("Rate limit exceeded")
		}

		apiErr := domain.NewAPIError(domain.ErrCodeRateLimit, "rate limit exceeded", "", c.GetString(CorrelationIDKey))
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apiErr)
	}
}
