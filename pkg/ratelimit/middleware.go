package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"organizer/internal/shared/apperror"
	"organizer/internal/shared/utils/response"
	"organizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware enforces the limit matching the request's route.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		limitType := getRateLimitType(c.Request.Method, path)

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			response.AbortWithError(c, apperror.Internal(fmt.Errorf("rate limit check (%s): %w", limitType, err)))
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, path)
			response.AbortWithError(c, apperror.New(apperror.CodeRateLimited, http.StatusTooManyRequests, "Rate limit exceeded").
				WithDetails(map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				}))
			return
		}

		c.Next()
	}
}

func getRateLimitType(method, path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return RateLimitTypeHealth

	case strings.Contains(path, "/internal/"):
		return RateLimitTypeInternal

	// configure and checkout both write
	case strings.Contains(path, "/split") && method == http.MethodPost:
		return RateLimitTypeSplitWrite

	case strings.Contains(path, "/split"):
		return RateLimitTypeSplit

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
