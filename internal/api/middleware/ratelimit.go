package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"greendrake/propdesk/internal/config"
)

const (
	clientIdleTimeout = 30 * time.Minute
	cleanupInterval   = 10 * time.Minute
)

// clientLimiter stores the rate limiter for a specific client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware applies a token bucket per client IP.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	done    chan struct{}
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware from the
// configured rate and burst. A non-positive rate disables limiting.
// Idle clients are swept in the background until ctx is cancelled.
func NewRateLimiterMiddleware(ctx context.Context, cfg *config.Config) *RateLimiterMiddleware {
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(cfg.RateLimitRPS),
		burst:   burst,
		done:    make(chan struct{}),
	}
	if rm.Enabled() {
		go rm.cleanupClients(ctx, cleanupInterval)
	} else {
		close(rm.done)
	}
	return rm
}

// Done is closed once the background cleanup has stopped.
func (rm *RateLimiterMiddleware) Done() <-chan struct{} {
	return rm.done
}

// Enabled reports whether requests are limited at all.
func (rm *RateLimiterMiddleware) Enabled() bool {
	return rm.rps > 0
}

// getClientLimiter retrieves or creates the rate limiter for a given client.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	client, exists := rm.clients[identifier]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(rm.rps, rm.burst)}
		rm.clients[identifier] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// cleanupClients periodically removes idle client entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients(ctx context.Context, interval time.Duration) {
	defer close(rm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := rm.evictIdle(now); removed > 0 {
				slog.Debug("rate limiter cleanup", "removed", removed)
			}
		}
	}
}

func (rm *RateLimiterMiddleware) evictIdle(now time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, client := range rm.clients {
		if now.Sub(client.lastSeen) > clientIdleTimeout {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rm.Enabled() {
			c.Next()
			return
		}

		clientKey := c.ClientIP()
		if !rm.getClientLimiter(clientKey).Allow() {
			slog.WarnContext(c.Request.Context(), "rate limit exceeded", "ip", clientKey, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
