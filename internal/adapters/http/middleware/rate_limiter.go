package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shyjal/goplaces/internal/domain"
)

// RateLimiter is a single token bucket.
type RateLimiter struct {
	Capacity      float64
	FillRate      float64
	CurrentTokens float64
	LastUpdate    time.Time
	mutx          sync.Mutex
}

func NewRateLimiter(capacity, fillrate float64) *RateLimiter {
	return &RateLimiter{
		Capacity:      capacity,
		FillRate:      fillrate,
		CurrentTokens: capacity,
		LastUpdate:    time.Now(),
	}
}

func (r *RateLimiter) RefillBucket() {
	now := time.Now()
	elapsedTime := now.Sub(r.LastUpdate).Seconds()
	tokensToAdd := elapsedTime * r.FillRate

	r.CurrentTokens += tokensToAdd
	if r.CurrentTokens > r.Capacity {
		r.CurrentTokens = r.Capacity
	}

	r.LastUpdate = now
}

func (r *RateLimiter) AllowRequest() bool {
	r.mutx.Lock()
	defer r.mutx.Unlock()

	r.RefillBucket()

	if r.CurrentTokens > 0 {
		r.CurrentTokens -= 1
		return true
	}

	return false
}

// IPRateLimiter keeps one in-process bucket per client key. It is the
// default limiter when no Redis address is configured.
type IPRateLimiter struct {
	limiters map[string]*RateLimiter
	capacity float64
	fillRate float64
	mutx     sync.Mutex
}

func NewIPRateLimiter(capacity, fillrate float64) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*RateLimiter),
		capacity: capacity,
		fillRate: fillrate,
	}
}

func (i *IPRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return i.limiterFor(key).AllowRequest(), nil
}

func (i *IPRateLimiter) limiterFor(key string) *RateLimiter {
	i.mutx.Lock()
	defer i.mutx.Unlock()

	limiter, exist := i.limiters[key]
	if !exist {
		limiter = NewRateLimiter(i.capacity, i.fillRate)
		i.limiters[key] = limiter
	}

	return limiter
}

// RedisRateLimiter is a distributed token bucket, used when several
// relay instances share one Redis.
type RedisRateLimiter struct {
	Client   *redis.Client
	Capacity float64
	FillRate float64
	TTL      time.Duration
}

func NewRedisRateLimiter(client *redis.Client, capacity, fillrate float64, ttl time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		Client:   client,
		Capacity: capacity,
		FillRate: fillrate,
		TTL:      ttl,
	}
}

func (r *RedisRateLimiter) TokensKey(key string) string {
	return fmt.Sprintf("rate_limit:%s:tokens", key)
}

func (r *RedisRateLimiter) LastKey(key string) string {
	return fmt.Sprintf("rate_limit:%s:last", key)
}

var tokenBucketScript = redis.NewScript(`
local tokensKey = KEYS[1]
local lastKey   = KEYS[2]
local capacity  = tonumber(ARGV[1])
local fillRate  = tonumber(ARGV[2]) -- tokens per second
local now       = tonumber(ARGV[3]) -- nanoseconds
local ttl       = tonumber(ARGV[4]) -- seconds

local tokens = tonumber(redis.call("GET", tokensKey))
local last   = tonumber(redis.call("GET", lastKey))

if not tokens or not last then
  tokens = capacity
  last = now
else
  local elapsed = math.max(0, now - last) / 1e9
  local to_add = elapsed * fillRate
  tokens = math.min(capacity, tokens + to_add)
  last = now
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("SET", tokensKey, tokens, "EX", ttl)
redis.call("SET", lastKey, last, "EX", ttl)

return allowed
`)

// Allow grants a token if one is available, atomically across instances.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixNano()

	keys := []string{
		r.TokensKey(key),
		r.LastKey(key),
	}

	args := []interface{}{
		r.Capacity,
		r.FillRate,
		now,
		int64(r.TTL / time.Second),
	}

	res, err := tokenBucketScript.Run(ctx, r.Client, keys, args...).Int()
	if err != nil {
		return false, domain.NewDomainError(domain.ErrCodeExternal, "redis is not responding", err)
	}

	return res == 1, nil
}
