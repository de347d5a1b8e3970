// Package http provides the CSV upload handler and its throttle middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	authHTTP "github.com/foodnet/analytics/internal/auth/http"
	"github.com/foodnet/analytics/internal/httputil"
)

// throttleStore holds per-uploader token buckets with automatic cleanup.
// Uploads are heavier than regular requests, so they get their own budget
// on top of the request pipeline's fixed windows.
type throttleStore struct {
	limiters sync.Map // map[string]*throttleEntry
	rps      float64
	burst    int
}

// throttleEntry holds a limiter and last access time for cleanup.
type throttleEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// UploadThrottleMiddleware enforces per-uploader throttling on the CSV
// endpoint using a token bucket. It runs behind the pipeline guard and keys
// buckets the same way the pipeline does.
//
// Returns 429 Too Many Requests with a Retry-After header when the bucket
// is empty.
func UploadThrottleMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &throttleStore{
		rps:   rps,
		burst: burst,
	}

	// Cleanup stale buckets every 5 minutes
	go store.cleanupStale(context.Background(), 5*time.Minute)

	return func(c *gin.Context) {
		identity, ok := authHTTP.GetIdentity(c.Request.Context())
		if !ok {
			logger.Error("upload throttle: no identity in context")
			httputil.HandleErrorGin(c, authDomain.ErrUnauthenticated, logger)
			c.Abort()
			return
		}

		limiter := store.getLimiter(identity.RateLimitKey())

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			logger.Debug("upload throttled",
				slog.String("key", identity.RateLimitKey()),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			httputil.HandleErrorGin(c, authDomain.ErrRateLimitExceeded, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiter retrieves or creates a token bucket for an uploader key.
func (s *throttleStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*throttleEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &throttleEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}

	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*throttleEntry).limiter
}

// cleanupStale removes buckets that haven't been used recently.
func (s *throttleStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-interval)
			s.limiters.Range(func(key, val any) bool {
				entry := val.(*throttleEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(cutoff)
				entry.mu.Unlock()
				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
