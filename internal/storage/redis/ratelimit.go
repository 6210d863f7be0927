package redis

import (
	"context"
	"fmt"
	"time"
)

// CheckRateLimit counts a hit for (client, action) in the current window and
// reports whether the limit is exceeded.
func (s *Storage) CheckRateLimit(ctx context.Context, client, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", client, action)

	count, err := s.client.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiry if this is the first increment
	if count == 1 {
		if _, err := s.client.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count > limit, nil
}
