package auth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/littlelemon/ordering-api/models"
	"github.com/redis/go-redis/v9"
)

// Throttle slows down repeated failed token requests for one username.
type Throttle interface {
	// Wait reports how long the caller must wait before trying again.
	Wait(ctx context.Context, username string) (time.Duration, error)
	Failed(ctx context.Context, username string) error
	Succeeded(ctx context.Context, username string) error
}

// ThrottledError is returned while a username is cooling down.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", int(math.Ceil(e.RetryAfter.Seconds())))
}

func (e *ThrottledError) Unwrap() error {
	return models.ErrThrottled
}

// CooldownFor returns the wait imposed after failures consecutive failures:
// nothing below maxFailures, then doubling from one second up to limit.
func CooldownFor(failures, maxFailures int, limit time.Duration) time.Duration {
	if failures < maxFailures {
		return 0
	}
	n := failures - maxFailures
	if n >= 30 {
		return limit
	}
	if d := time.Second << n; d < limit {
		return d
	}
	return limit
}

type RedisThrottle struct {
	client      *redis.Client
	maxFailures int
	limit       time.Duration
	window      time.Duration
}

func NewRedisThrottle(client *redis.Client, maxFailures int, limit time.Duration) *RedisThrottle {
	return &RedisThrottle{
		client:      client,
		maxFailures: maxFailures,
		limit:       limit,
		window:      15 * time.Minute,
	}
}

func failuresKey(username string) string {
	return fmt.Sprintf("login:%s:failures", username)
}

func cooldownKey(username string) string {
	return fmt.Sprintf("login:%s:cooldown", username)
}

func (t *RedisThrottle) Wait(ctx context.Context, username string) (time.Duration, error) {
	ttl, err := t.client.PTTL(ctx, cooldownKey(username)).Result()
	if err != nil {
		return 0, fmt.Errorf("read login cooldown: %w", err)
	}
	// negative ttl means no key (-2) or no expiry (-1)
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (t *RedisThrottle) Failed(ctx context.Context, username string) error {
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, failuresKey(username))
	pipe.Expire(ctx, failuresKey(username), t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	cooldown := CooldownFor(int(incr.Val()), t.maxFailures, t.limit)
	if cooldown == 0 {
		return nil
	}
	if err := t.client.Set(ctx, cooldownKey(username), incr.Val(), cooldown).Err(); err != nil {
		return fmt.Errorf("set login cooldown: %w", err)
	}
	return nil
}

func (t *RedisThrottle) Succeeded(ctx context.Context, username string) error {
	if err := t.client.Del(ctx, failuresKey(username), cooldownKey(username)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

// NoThrottle is used when no Redis is configured.
type NoThrottle struct{}

func (NoThrottle) Wait(context.Context, string) (time.Duration, error) { return 0, nil }
func (NoThrottle) Failed(context.Context, string) error                { return nil }
func (NoThrottle) Succeeded(context.Context, string) error             { return nil }
