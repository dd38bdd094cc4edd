package httptransport

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// reportLimiter throttles post reports per user, backed by redis so the
// counter survives devserver restarts and is shared between instances.
type reportLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func newReportLimiter(client *redis.Client, limit int) *reportLimiter {
	if limit <= 0 {
		limit = 3
	}
	return &reportLimiter{
		client: client,
		limit:  limit,
		window: time.Hour,
	}
}

// allow increments the user's counter and reports whether they are still
// under the limit.
func (l *reportLimiter) allow(ctx context.Context, username string) (bool, error) {
	key := "ratelimit:report:" + username
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}
