package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"organizer/internal/shared/config"
	"organizer/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault    RateLimitType = "default"
	RateLimitTypeSplit      RateLimitType = "split"
	RateLimitTypeSplitWrite RateLimitType = "split_write"
	RateLimitTypeInternal   RateLimitType = "internal"
	RateLimitTypeHealth     RateLimitType = "health"
)

// Config holds per-type request limits for one sliding window.
type Config struct {
	Enabled          bool          `json:"enabled"`
	WindowDuration   time.Duration `json:"window_duration"`
	DefaultRequests  int           `json:"default_requests"`
	SplitRequests    int           `json:"split_requests"`
	SplitWrites      int           `json:"split_writes"`
	InternalRequests int           `json:"internal_requests"`
	HealthRequests   int           `json:"health_requests"`
	WhitelistedIPs   []string      `json:"whitelisted_ips"`
}

// NewConfig maps the application rate limit settings.
func NewConfig(cfg config.RateLimitConfig) *Config {
	return &Config{
		Enabled:          cfg.Enabled,
		WindowDuration:   cfg.WindowDuration,
		DefaultRequests:  cfg.DefaultRequests,
		SplitRequests:    cfg.SplitRequests,
		SplitWrites:      cfg.SplitWrites,
		InternalRequests: cfg.InternalRequests,
		HealthRequests:   cfg.HealthRequests,
		WhitelistedIPs:   cfg.WhitelistedIPs,
	}
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *redis.Client
	config *Config
	script *redis.Script
}

// Sliding window over a sorted set scored in milliseconds.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_seconds = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)

	if current_count >= limit then
		redis.call('EXPIRE', key, window_seconds)
		return {current_count + 1, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, window_seconds)

	return {current_count + 1, limit - current_count - 1}
`)

func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		script: slidingWindow,
	}
}

// IsAllowed checks and records one request from clientIP.
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)

	if !r.config.Enabled || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: time.Now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(clientIP, string(limitType))
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-r.config.WindowDuration)

	windowSeconds := int(r.config.WindowDuration.Seconds())
	if windowSeconds < 1 {
		windowSeconds = 1
	}

	result, err := r.script.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		windowSeconds,
		uuid.NewString(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	currentCount, _ := strconv.Atoi(fmt.Sprintf("%v", values[0]))
	remaining, _ := strconv.Atoi(fmt.Sprintf("%v", values[1]))

	return &Result{
		Allowed:   currentCount <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypeSplit:
		return r.config.SplitRequests
	case RateLimitTypeSplitWrite:
		return r.config.SplitWrites
	case RateLimitTypeInternal:
		return r.config.InternalRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	for _, whitelistedIP := range r.config.WhitelistedIPs {
		if ip == whitelistedIP {
			return true
		}
	}
	return false
}
