package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/matchday-seat-client/internal/config"
)

const noticeTooManyRequests = "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."

// bucketScript refills continuously: RefillTokens per RefillInterval, pro
// rata to the milliseconds elapsed, capped at Capacity.  State is one hash
// per key with the fractional level ("lvl") and the time it was computed
// ("at").  Returns {allowed, whole tokens left, ms until the next token}.
var bucketScript = redis.NewScript(`
	local now = tonumber(ARGV[1])
	local cap = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local interval = tonumber(ARGV[4])

	local lvl = tonumber(redis.call('HGET', KEYS[1], 'lvl'))
	local at = tonumber(redis.call('HGET', KEYS[1], 'at'))
	if lvl == nil or at == nil then
		lvl, at = cap, now
	end
	if now > at then
		lvl = math.min(cap, lvl + (now - at) * refill / interval)
	end

	local ok, wait = 0, 0
	if lvl >= 1 then
		ok, lvl = 1, lvl - 1
	else
		wait = math.ceil((1 - lvl) * interval / refill)
	end

	redis.call('HSET', KEYS[1], 'lvl', tostring(lvl), 'at', tostring(now))
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
	return { ok, math.floor(lvl), wait }
`)

type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// retryAfterSeconds rounds the wait up so clients never retry too early.
func (r bucketResult) retryAfterSeconds() int {
	return int((r.retry + time.Second - 1) / time.Second)
}

func takeToken(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, now time.Time) (bucketResult, error) {
	vals, err := bucketScript.Run(ctx, rdb, []string{key},
		now.UnixMilli(), cfg.Capacity, cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second),
	).Int64Slice()
	switch {
	case err != nil:
		return bucketResult{}, err
	case len(vals) != 3:
		return bucketResult{}, fmt.Errorf("bucket script returned %d values", len(vals))
	}
	return bucketResult{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		retry:     time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits the routes it wraps per session and route (see
// RateLimitConfig.KeyStrategy).  Without Redis, or when Redis fails, requests
// pass unlimited.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := takeToken(c.Request().Context(), rdb, cfg, key, time.Now())
			if err != nil {
				c.Logger().Warnf("[ratelimit] %s: %v", key, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}

			secs := res.retryAfterSeconds()
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("[ratelimit] %s blocked for %s", key, res.retry)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       noticeTooManyRequests,
				"retry_after": secs,
			})
		}
	}
}

// rateKeyParts lists, per key strategy, which labelled parts make up the key.
// Unknown strategies use "session_route".
var rateKeyParts = map[string][]string{
	"ip":            {"ip"},
	"session":       {"session"},
	"route":         {"route"},
	"ip_route":      {"ip", "route"},
	"ip_session":    {"ip", "session"},
	"session_route": {"session", "route"},
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	labels, ok := rateKeyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		labels = rateKeyParts["session_route"]
	}
	parts := []string{cfg.Prefix}
	for _, l := range labels {
		parts = append(parts, l, rateKeyValue(l, c))
	}
	return strings.Join(parts, ":")
}

func rateKeyValue(label string, c echo.Context) string {
	switch label {
	case "ip":
		if ip := c.RealIP(); ip != "" {
			return ip
		}
		return "unknown"
	case "session":
		return sessionKey(c)
	}
	return c.Request().Method + " " + c.Path()
}
