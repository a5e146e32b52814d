package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/config"
)

// limiterScript refills the bucket stored at KEYS[1] and takes one token.
// It returns {allowed, remaining, retry_after_ms}.
var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb redis.Scripter
	now func() time.Time
}

// NewTokenBucket limits requests per client with a Redis token bucket.  It
// is a no-op when disabled or when Redis is unavailable, and it fails open
// on Redis errors.  Blocked requests get a 429 through the error handler.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	tb := &tokenBucket{cfg: cfg, rdb: rdb, now: time.Now}
	return tb.middleware
}

func (tb *tokenBucket) args() []any {
	return []any{
		tb.now().UnixMilli(),
		tb.cfg.Capacity,
		tb.cfg.RefillTokens,
		tb.cfg.RefillInterval.Milliseconds(),
		int64(tb.cfg.TTL / time.Second),
	}
}

func (tb *tokenBucket) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := buildRateKey(tb.cfg, c)
		log := logrus.WithField("key", key)

		vals, err := limiterScript.Run(c.Request().Context(), tb.rdb, []string{key}, tb.args()...).Result()
		if err != nil {
			if tb.cfg.Debug {
				log.WithError(err).Warn("ratelimit: redis error")
			}
			return next(c)
		}

		arr, ok := vals.([]any)
		if !ok || len(arr) != 3 {
			if tb.cfg.Debug {
				log.Warnf("ratelimit: unexpected script result %#v", vals)
			}
			return next(c)
		}
		allowed := fmt.Sprint(arr[0]) == "1"
		remaining := asInt64(arr[1])
		retryMs := asInt64(arr[2])

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(tb.cfg.Capacity))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000.0))
			if secs < 0 {
				secs = 0
			}
			h.Set("Retry-After", strconv.Itoa(secs))
			if tb.cfg.Debug {
				log.WithField("retry_ms", retryMs).Info("ratelimit: blocked")
			}
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many submissions. Please wait a moment and try again.")
		}

		if tb.cfg.Debug {
			h.Set("X-RateLimit-Key", key)
		}
		return next(c)
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// buildRateKey derives the bucket key from the configured strategy.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default:
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
