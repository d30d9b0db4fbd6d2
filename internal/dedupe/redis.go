package dedupe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClaimer marks record event ids as handled using SET NX with a TTL,
// so redelivered events (Kafka at-least-once, webhook retries) send once.
type RedisClaimer struct {
	rdb       redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

func NewRedisClaimer(rdb redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisClaimer {
	if keyPrefix == "" {
		keyPrefix = "onotify:event:"
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisClaimer{rdb: rdb, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisClaimer) Key(eventID string) string { return c.keyPrefix + eventID }

// Claim returns true the first time an id is seen within the TTL.
func (c *RedisClaimer) Claim(ctx context.Context, eventID string) (bool, error) {
	return c.rdb.SetNX(ctx, c.Key(eventID), time.Now().Unix(), c.ttl).Result()
}

// Release forgets a claim so the event can be handled again.
func (c *RedisClaimer) Release(ctx context.Context, eventID string) error {
	return c.rdb.Del(ctx, c.Key(eventID)).Err()
}
