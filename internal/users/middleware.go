package users

import (
	"net/http"

	"organizer/internal/shared/apperror"
	"organizer/internal/shared/constants"
	"organizer/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequireProfile loads the caller's profile and stores it under
// constants.ContextKeyProfile. Must run after JWT authentication.
func RequireProfile(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			response.AbortWithError(c, apperror.New(apperror.CodeUnauthenticated, http.StatusUnauthorized, "Authentication required"))
			return
		}

		profile, err := repo.FindProfileByID(c.Request.Context(), userID)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		if profile == nil {
			response.AbortWithError(c, apperror.New(apperror.CodeProfileNotFound, http.StatusForbidden, "Profile not found"))
			return
		}

		c.Set(constants.ContextKeyProfile, profile)
		c.Next()
	}
}

// UserIDFromContext reads the authenticated subject set by the JWT middleware.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ProfileFromContext returns the profile stored by RequireProfile.
func ProfileFromContext(c *gin.Context) *Profile {
	raw, exists := c.Get(constants.ContextKeyProfile)
	if !exists {
		return nil
	}
	profile, _ := raw.(*Profile)
	return profile
}
