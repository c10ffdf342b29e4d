package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	rateWindow  = time.Minute
	sweepEvery  = 5 * time.Minute
	idleAfter   = 2 * rateWindow
	retryAfterS = "60"
)

type clientWindow struct {
	start time.Time
	hits  int
}

// ClientLimiter admits at most limit requests per client in each fixed
// one-minute window.
type ClientLimiter struct {
	limit int

	mu      sync.Mutex
	clients map[string]*clientWindow
}

// NewClientLimiter creates a limiter and forgets idle clients until ctx is done.
func NewClientLimiter(ctx context.Context, limit int) *ClientLimiter {
	l := &ClientLimiter{limit: limit, clients: make(map[string]*clientWindow)}
	go l.sweepLoop(ctx)
	return l
}

// Allow records one request of client at now and reports whether it is admitted.
func (l *ClientLimiter) Allow(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[client]
	if !ok || now.Sub(w.start) >= rateWindow {
		l.clients[client] = &clientWindow{start: now, hits: 1}
		return true
	}
	if w.hits >= l.limit {
		return false
	}
	w.hits++
	return true
}

// Tracked returns the number of clients with a live window.
func (l *ClientLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *ClientLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for client, w := range l.clients {
		if now.Sub(w.start) > idleAfter {
			delete(l.clients, client)
		}
	}
}

func (l *ClientLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

// Handler rejects requests over the limit with 429, keyed by client IP.
func (l *ClientLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP(), time.Now()) {
			c.Next()
			return
		}
		c.Header("Retry-After", retryAfterS)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", l.limit),
		})
	}
}

// RateLimiter is NewClientLimiter(ctx, limit).Handler().
func RateLimiter(ctx context.Context, limit int) gin.HandlerFunc {
	return NewClientLimiter(ctx, limit).Handler()
}
