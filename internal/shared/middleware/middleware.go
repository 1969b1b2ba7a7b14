package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"organizer/internal/shared/apperror"
	"organizer/internal/shared/config"
	"organizer/internal/shared/constants"
	"organizer/internal/shared/utils/response"
	"organizer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func unauthenticated(message string) *apperror.Error {
	return apperror.New(apperror.CodeUnauthenticated, http.StatusUnauthorized, message)
}

// JWTAuthWithConfig validates the bearer token issued by the auth provider and
// stores its subject as the user id.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, unauthenticated("Authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.AbortWithError(c, unauthenticated("authorization header format must be Bearer {token}"))
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), "invalid token", c.ClientIP())
			response.AbortWithError(c, unauthenticated("invalid or expired token"))
			return
		}

		if cfg.JWT.Issuer != "" && !claims.VerifyIssuer(cfg.JWT.Issuer, true) {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), "issuer mismatch", c.ClientIP())
			response.AbortWithError(c, unauthenticated("invalid token issuer"))
			return
		}

		subject := subjectFromClaims(claims)
		if _, err := uuid.Parse(subject); err != nil {
			response.AbortWithError(c, unauthenticated("invalid token subject"))
			return
		}

		c.Set(constants.ContextKeyUserID, subject)
		if email, ok := claims["email"].(string); ok {
			c.Set(constants.ContextKeyUserEmail, email)
		}

		c.Next()
	}
}

func subjectFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["user_id"].(string); ok {
		return id
	}
	return ""
}

// RequestID propagates X-Request-Id and X-Correlation-Id, generating a
// request id when the caller did not send one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		correlationID := c.GetHeader(constants.HeaderCorrelationID)
		if correlationID == "" {
			correlationID = requestID
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Set(constants.ContextKeyCorrelationID, correlationID)
		c.Header(constants.HeaderRequestID, requestID)
		c.Header(constants.HeaderCorrelationID, correlationID)

		c.Next()
	}
}

// RequireInternalSecret guards service-to-service callbacks with a shared secret.
func RequireInternalSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(constants.HeaderInternalSecret)
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			response.AbortWithError(c, unauthenticated("invalid internal secret"))
			return
		}
		c.Next()
	}
}
