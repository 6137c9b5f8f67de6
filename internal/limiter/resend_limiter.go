package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResendLimiter throttles outbound verification/recovery emails per
// address. Counters live in redis with a TTL, so a restart never leaves
// stale blocks behind.
type ResendLimiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int
}

func New(rdb *redis.Client, window time.Duration, max int) *ResendLimiter {
	return &ResendLimiter{rdb: rdb, window: window, max: max}
}

// Allow reports whether another email may be sent to the address for the
// given purpose within the current window.
func (l *ResendLimiter) Allow(ctx context.Context, email, purpose string) (bool, error) {
	key := fmt.Sprintf("resend:%s:%s", purpose, email)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(l.max), nil
}
