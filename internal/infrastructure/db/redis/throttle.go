package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResetCooldown = 2 * time.Minute

// ResetThrottle bounds password reset requests per address using a cooldown
// key. Key format: reset:<email>
type ResetThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewResetThrottle creates a ResetThrottle wrapping the given Redis client.
// If cooldown <= 0, defaultResetCooldown is used.
func NewResetThrottle(client *redis.Client, cooldown time.Duration) *ResetThrottle {
	if cooldown <= 0 {
		cooldown = defaultResetCooldown
	}
	return &ResetThrottle{client: client, cooldown: cooldown}
}

// Allow reports whether a reset may be requested for the address right now.
// The first request within a cooldown window claims the key atomically; any
// request while the key lives is denied.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}

func (t *ResetThrottle) key(email string) string {
	return "reset:" + strings.ToLower(email)
}
