package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	appLogger "github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
)

const rateLimitProblemType = "https://console.launchkart.io/errors/rate-limit-exceeded"

// IdentifierFunc extracts the identifier a rule is scoped to, such as the client IP.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule is one sliding-window limit.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

func (r RateLimitRule) usable() bool {
	return r.Identifier != nil && r.Limit > 0 && r.Window > 0
}

// RateLimiter enforces sliding-window rules against a shared attempt store.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

type verdict struct {
	allowed    bool
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// ProblemDetails is the RFC 9457 payload returned when a limit is exceeded.
type ProblemDetails struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// NewRateLimiter builds a rate limiter. A nil store disables limiting.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the clock for deterministic tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule to the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// RateLimit returns a middleware enforcing every usable rule. Store failures fail open.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.usable() {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		active = append(active, rule)
	}

	return func(c *gin.Context) {
		if rl == nil || rl.store == nil || len(active) == 0 {
			c.Next()
			return
		}

		now := rl.now()
		var tightest *verdict

		for _, rule := range active {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			v, err := rl.check(c, rule, rule.Name+":"+identifier, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.String("client_ip", appLogger.MaskIP(identifier)),
					zap.Error(err),
				)
				continue
			}

			if !v.allowed {
				writeRateHeaders(c, v)
				rl.reject(c, v)
				return
			}
			if tightest == nil || v.remaining < tightest.remaining {
				snapshot := v
				tightest = &snapshot
			}
		}

		if tightest != nil {
			writeRateHeaders(c, *tightest)
		}
		c.Next()
	}
}

func (rl *RateLimiter) check(c *gin.Context, rule RateLimitRule, key string, now time.Time) (verdict, error) {
	ctx := c.Request.Context()

	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return verdict{}, err
	}
	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return verdict{}, err
	}
	oldest, found, err := rl.store.OldestAttempt(ctx, key, rule.Window, now)
	if err != nil {
		return verdict{}, err
	}

	v := verdict{limit: rule.Limit, reset: now.Add(rule.Window), allowed: true}
	if found {
		v.reset = oldest.Add(rule.Window)
	}
	v.retryAfter = max(v.reset.Sub(now), 0)

	if count >= rule.Limit {
		v.allowed = false
		return v, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return verdict{}, err
	}
	v.remaining = max(rule.Limit-count-1, 0)
	return v, nil
}

func retrySeconds(v verdict) int {
	return max(int(math.Ceil(v.retryAfter.Seconds())), 0)
}

func writeRateHeaders(c *gin.Context, v verdict) {
	h := c.Writer.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(v.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(v.reset.Unix(), 10))
	if !v.allowed {
		h.Set("Retry-After", strconv.Itoa(retrySeconds(v)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, v verdict) {
	seconds := retrySeconds(v)
	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      "Too Many OTP Requests",
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds),
		Instance:   instance,
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}
