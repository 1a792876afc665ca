package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter implements rate limiting for API endpoints
type RateLimiter struct {
	ipLimiters         map[string]*rate.Limiter
	webhookLimiters    map[string]*rate.Limiter
	ipMutex            sync.RWMutex
	webhookMutex       sync.RWMutex
	ipLimiterRate      rate.Limit
	webhookLimiterRate rate.Limit
	ipBurst            int
	webhookBurst       int
	cleanupTicker      *time.Ticker
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(ipRequestsPerSecond, webhookRequestsPerSecond float64, ipBurst, webhookBurst int) *RateLimiter {
	limiter := &RateLimiter{
		ipLimiters:         make(map[string]*rate.Limiter),
		webhookLimiters:    make(map[string]*rate.Limiter),
		ipLimiterRate:      rate.Limit(ipRequestsPerSecond),
		webhookLimiterRate: rate.Limit(webhookRequestsPerSecond),
		ipBurst:            ipBurst,
		webhookBurst:       webhookBurst,
		cleanupTicker:      time.NewTicker(5 * time.Minute),
	}

	go limiter.cleanup()

	return limiter
}

// cleanup periodically removes old limiters to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	for range rl.cleanupTicker.C {
		rl.ipMutex.Lock()
		rl.ipLimiters = make(map[string]*rate.Limiter)
		rl.ipMutex.Unlock()

		rl.webhookMutex.Lock()
		rl.webhookLimiters = make(map[string]*rate.Limiter)
		rl.webhookMutex.Unlock()
	}
}

// Stop stops the rate limiter cleanup
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
}

// getIPLimiter returns the rate limiter for an IP
func (rl *RateLimiter) getIPLimiter(ip string) *rate.Limiter {
	rl.ipMutex.RLock()
	limiter, exists := rl.ipLimiters[ip]
	rl.ipMutex.RUnlock()

	if !exists {
		rl.ipMutex.Lock()
		limiter = rate.NewLimiter(rl.ipLimiterRate, rl.ipBurst)
		rl.ipLimiters[ip] = limiter
		rl.ipMutex.Unlock()
	}

	return limiter
}

// getWebhookLimiter returns the rate limiter for a webhook sender
func (rl *RateLimiter) getWebhookLimiter(ip string) *rate.Limiter {
	rl.webhookMutex.RLock()
	limiter, exists := rl.webhookLimiters[ip]
	rl.webhookMutex.RUnlock()

	if !exists {
		rl.webhookMutex.Lock()
		limiter = rate.NewLimiter(rl.webhookLimiterRate, rl.webhookBurst)
		rl.webhookLimiters[ip] = limiter
		rl.webhookMutex.Unlock()
	}

	return limiter
}

// IPRateLimiterMiddleware limits requests based on IP address
func (rl *RateLimiter) IPRateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getIPLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// WebhookRateLimiterMiddleware limits inbound verification webhooks per sender.
// Webhook senders get their own bucket so a misbehaving verification provider
// cannot crowd out regular API traffic.
func (rl *RateLimiter) WebhookRateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getWebhookLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, webhook will be retried by sender",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
