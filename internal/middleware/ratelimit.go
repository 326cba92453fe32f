package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const defaultSubmitPerMinute = 10

// SubmitRateLimiter throttles submissions per authenticated user.
// Grading a submission can fan out into LLM calls.
type SubmitRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewSubmitRateLimiter creates a limiter allowing perMinute submissions
// per user.
func NewSubmitRateLimiter(perMinute int) *SubmitRateLimiter {
	if perMinute <= 0 {
		perMinute = defaultSubmitPerMinute
	}
	return &SubmitRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *SubmitRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Handle rejects requests over the per-user budget with 429. Requests
// without an authenticated user are keyed by client IP.
func (l *SubmitRateLimiter) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, _ := c.Locals(UserIDKey).(string)
		if key == "" {
			key = c.IP()
		}

		if !l.limiterFor(key).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "Too many submissions, please slow down",
				Status:  fiber.StatusTooManyRequests,
			})
		}
		return c.Next()
	}
}
