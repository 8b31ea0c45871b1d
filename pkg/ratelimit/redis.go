package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript increments the window counter and starts the window TTL on the
// first hit. Running both in one script keeps a crash between INCR and
// PEXPIRE from leaving an immortal counter.
var admitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisLimiter shares buckets between replicas through Redis counters.
type RedisLimiter struct {
	redis    redis.UniversalClient
	policies Policies
	prefix   string
	now      func() time.Time
}

// NewRedisLimiter returns a limiter storing counters under prefix.
func NewRedisLimiter(client redis.UniversalClient, policies Policies, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "kaleidoscope:rl"
	}
	return &RedisLimiter{
		redis:    client,
		policies: policies,
		prefix:   prefix,
		now:      time.Now,
	}
}

// Admit implements Limiter.
func (l *RedisLimiter) Admit(ctx context.Context, key string, class Class) (Decision, error) {
	p, ok := l.policies[class]
	if !ok {
		return Decision{}, ErrUnknownClass
	}
	if p.Unlimited() {
		return unlimited(), nil
	}

	k := l.prefix + ":" + bucketKey(class, key)
	res, err := admitScript.Run(ctx, l.redis, []string{k}, p.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	return Decision{
		Allowed:   count <= p.Limit,
		Limit:     p.Limit,
		Remaining: max(p.Limit-count, 0),
		ResetAt:   l.now().Add(ttl),
	}, nil
}
