package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ziyuwang/portfolio-api/config"
	"github.com/ziyuwang/portfolio-api/utils"
)

type bucket struct {
	limiter *rate.Limiter
	expires time.Time
	mu      sync.Mutex
}

var (
	buckets   = map[string]*bucket{}
	bucketsMu sync.Mutex
)

// GlobalRateLimit applies a per-IP token bucket to the whole API. It is a
// burst guard in front of the per-operation fixed windows, not a replacement
// for them.
func GlobalRateLimit() gin.HandlerFunc {
	cfg := config.Get()
	perMinute := cfg.RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	r := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()
		b := getBucket(ip, r, burst)

		b.mu.Lock()
		allowed := b.limiter.Allow()
		b.mu.Unlock()

		if !allowed {
			utils.Error(ctx, 429, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func getBucket(key string, limit rate.Limit, burst int) *bucket {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()

	cleanupExpiredBucketsLocked()

	if b, ok := buckets[key]; ok {
		b.expires = time.Now().Add(5 * time.Minute)
		return b
	}

	b := &bucket{
		limiter: rate.NewLimiter(limit, burst),
		expires: time.Now().Add(5 * time.Minute),
	}
	buckets[key] = b
	return b
}

func cleanupExpiredBucketsLocked() {
	now := time.Now()
	for key, b := range buckets {
		if now.After(b.expires) {
			delete(buckets, key)
		}
	}
}
