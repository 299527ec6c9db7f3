package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "onboarding:ratelimit:"

// slidingWindow prunes, counts and conditionally records in one server-side
// step so concurrent callers cannot both take the last slot.
//
// KEYS[1] window key
// ARGV    now (µs), cutoff (µs), limit, window (ms), member
// returns {allowed, count, oldest score}
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
	count = count + 1
	allowed = 1
end
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local first = ARGV[1]
if oldest[2] then
	first = oldest[2]
end
return {allowed, count, first}
`)

// Redis keeps one sorted set per key, scored by request time in
// microseconds, so every instance shares the same window.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := s.now()
	reply, err := slidingWindow.Run(ctx, s.client, []string{rateLimitKeyPrefix + key},
		now.UnixMicro(),
		now.Add(-window).UnixMicro(),
		limit,
		window.Milliseconds(),
		uuid.NewString(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit window %s: %w", key, err)
	}
	allowed, count, oldest, err := parseWindowReply(reply)
	if err != nil {
		return nil, fmt.Errorf("rate limit window %s: %w", key, err)
	}

	resetAt := time.UnixMicro(oldest).Add(window)
	if !allowed {
		return &Result{
			Allowed:    false,
			Limit:      limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}

func parseWindowReply(reply []any) (allowed bool, count int, oldest int64, err error) {
	if len(reply) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected script reply %v", reply)
	}
	flag, ok1 := reply[0].(int64)
	n, ok2 := reply[1].(int64)
	score, ok3 := reply[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return false, 0, 0, fmt.Errorf("unexpected script reply %v", reply)
	}
	f, err := strconv.ParseFloat(score, 64)
	if err != nil {
		return false, 0, 0, fmt.Errorf("parse oldest score: %w", err)
	}
	return flag == 1, int(n), int64(f), nil
}
