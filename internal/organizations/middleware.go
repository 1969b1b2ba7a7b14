package organizations

import (
	"net/http"
	"strconv"
	"strings"

	"organizer/internal/shared/apperror"
	"organizer/internal/shared/constants"
	"organizer/internal/shared/utils/response"
	"organizer/internal/users"

	"github.com/gin-gonic/gin"
)

// RequireRole resolves the active organization from the :orgId path param, the
// X-Organization-Id header or the organizationId query param (in that order)
// and checks the caller's membership role. Must run after users.RequireProfile.
func RequireRole(svc Service, allowed ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := users.ProfileFromContext(c)
		if profile == nil {
			response.AbortWithError(c, apperror.New(apperror.CodeProfileNotFound, http.StatusForbidden, "Profile not found"))
			return
		}

		orgID, ok, err := OrganizationIDFromRequest(c)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		if !ok {
			response.AbortWithError(c, forbidden())
			return
		}

		org, member, err := svc.ResolveMembership(c.Request.Context(), orgID, profile.ID, allowed)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(constants.ContextKeyOrganization, org)
		c.Set(constants.ContextKeyMemberRole, string(member.Role))
		c.Next()
	}
}

// OrganizationIDFromRequest returns ok=false when no organization id was sent.
func OrganizationIDFromRequest(c *gin.Context) (uint, bool, error) {
	raw := c.Param("orgId")
	if raw == "" {
		raw = c.GetHeader(constants.HeaderOrganizationID)
	}
	if raw == "" {
		raw = c.Query("organizationId")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false, apperror.BadRequest("Invalid organization id")
	}
	return uint(id), true, nil
}

// FromContext returns the organization stored by RequireRole.
func FromContext(c *gin.Context) *Organization {
	raw, exists := c.Get(constants.ContextKeyOrganization)
	if !exists {
		return nil
	}
	org, _ := raw.(*Organization)
	return org
}
