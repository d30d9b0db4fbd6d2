package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether one more request from client fits the current window.
type Limiter interface {
	Allow(ctx context.Context, client string) (ok bool, retryAfter time.Duration, err error)
}

// RedisLimiter is a fixed-window counter: {prefix}{client}:{window index}.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	window time.Duration
	limit  int64
	now    func() time.Time
}

func NewRedisLimiter(rdb redis.Cmdable, prefix string, window time.Duration, limit int) *RedisLimiter {
	if window <= 0 {
		window = time.Second
	}
	if prefix == "" {
		prefix = "rl:key:"
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, window: window, limit: int64(limit), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, client string) (bool, time.Duration, error) {
	now := l.now()
	idx := now.UnixNano() / int64(l.window)
	key := l.prefix + client + ":" + strconv.FormatInt(idx, 10)

	var cnt *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		cnt = p.Incr(ctx, key)
		p.Expire(ctx, key, 2*l.window)
		return nil
	})
	if err != nil {
		return true, 0, err
	}

	if cnt.Val() <= l.limit {
		return true, 0, nil
	}
	remain := l.window - time.Duration(now.UnixNano()%int64(l.window))
	return false, remain, nil
}

// RateLimitMiddleware rejects requests over the limit with 429. It expects
// client_id in echo.Context (set by APIKeyMiddleware). A nil limiter or a
// limiter error lets the request through.
func RateLimitMiddleware(l Limiter, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID, ok := ClientIDFromCtx(c)
			if !ok || l == nil {
				return next(c)
			}

			allowed, retryAfter, err := l.Allow(c.Request().Context(), clientID)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("client_id", clientID), zap.Error(err))
				return next(c)
			}
			if allowed {
				return next(c)
			}

			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
		}
	}
}
