package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vastaff/gatekeeper/internal/models"
)

const rateKeyPrefix = "rate:"

// Весь fixed-window чек выполняется одним скриптом, чтобы конкурентные
// запросы одного клиента не теряли инкременты между GET и SET.
//
// Returns {allowed, burst, reset_at_ms}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local burst = tonumber(ARGV[4])

local reset = tonumber(redis.call('HGET', key, 'reset') or '0')
if reset == 0 or now > reset then
    reset = now + window
    redis.call('HSET', key, 'count', 1, 'reset', reset, 'last', now)
    redis.call('PEXPIRE', key, window)
    return {1, 0, reset}
end

local last = tonumber(redis.call('HGET', key, 'last') or '0')
if now - last < burst then
    return {0, 1, reset}
end

local count = tonumber(redis.call('HGET', key, 'count') or '0')
if count >= max then
    return {0, 0, reset}
end

redis.call('HSET', key, 'count', count + 1, 'last', now)
return {1, 0, reset}
`)

// RateLimitStore - fixed-window счетчики, разделяемые всеми инстансами.
// Ключи истекают вместе с окном, отдельный sweep не нужен.
type RateLimitStore struct {
	client        *redis.Client
	burstInterval time.Duration
}

func NewRateLimitStore(client *redis.Client, burstInterval time.Duration) *RateLimitStore {
	return &RateLimitStore{client: client, burstInterval: burstInterval}
}

func (s *RateLimitStore) Allow(ctx context.Context, key string, policy models.RatePolicy, now time.Time) (*models.RateDecision, error) {
	res, err := allowScript.Run(ctx, s.client,
		[]string{rateKeyPrefix + key},
		now.UnixMilli(),
		policy.Window.Milliseconds(),
		policy.Max,
		s.burstInterval.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	return &models.RateDecision{
		Allowed:    res[0] == 1,
		Burst:      res[1] == 1,
		ResetAfter: time.Duration(res[2]-now.UnixMilli()) * time.Millisecond,
	}, nil
}
