package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

const DefaultPrefix = "leadcrm:ratelimit"

// Limiter counts hits per key in fixed windows stored in redis.
type Limiter struct {
	rdb    redis.Scripter
	prefix string
	limit  int
	window time.Duration
	clock  func() time.Time
}

func New(rdb redis.Scripter, prefix string, limit int, window time.Duration) (*Limiter, error) {
	if rdb == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		clock:  time.Now,
	}, nil
}

func (l *Limiter) WithClock(clock func() time.Time) *Limiter {
	if clock != nil {
		l.clock = clock
	}
	return l
}

// Allow reports whether key is still within quota for the current window.
// Redis errors are returned with allowed=true; callers decide whether to fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := l.clock().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := fixedWindowScript.Run(ctx, l.rdb, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return true, fmt.Errorf("rate limit %s: %w", redisKey, err)
	}
	return n <= int64(l.limit), nil
}
