package constants

import "time"

// Redis Cache Configuration
// Pattern: organizer:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_DYNAMIC_SHORT = 5 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "organizer"
)

// ================== FEES MODULE ==================

const (
	CACHE_KEY_PLATFORM_FEES = CACHE_PREFIX + ":fees:platform:defaults"
)

const (
	TTL_PLATFORM_FEES = TTL_DYNAMIC_SHORT
)

// ================== RATE LIMIT ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_FEES_ALL = CACHE_PREFIX + ":fees:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildRateLimitKey(clientIP, limitType string) string {
	return RATE_LIMIT_PREFIX + ":" + clientIP + ":" + limitType
}
