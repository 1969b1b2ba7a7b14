package splits

import (
	"github.com/gin-gonic/gin"
)

// RouteGuards are the middleware chains protecting split routes.
type RouteGuards struct {
	Auth     gin.HandlerFunc // bearer token
	Profile  gin.HandlerFunc // caller must have a profile
	OrgRole  gin.HandlerFunc // booking-manager membership in :orgId
	Internal gin.HandlerFunc // shared secret for service callbacks
}

// SetupSplitRoutes configures booking split routes under the API base path.
func SetupSplitRoutes(rg *gin.RouterGroup, controller *Controller, guards RouteGuards) {
	org := rg.Group("/org/:orgId/bookings/:id/split")
	org.Use(RequireBookingID(), guards.Auth, guards.Profile, guards.OrgRole)
	{
		org.GET("", controller.GetSplit)
		org.POST("", controller.ConfigureSplit)
	}

	invites := rg.Group("/invites/:token/split")
	invites.Use(guards.Auth)
	{
		invites.POST("/checkout", controller.Checkout)
	}

	internal := rg.Group("/internal/splits")
	internal.Use(guards.Internal)
	{
		internal.POST("/payments", controller.ConfirmPayment)
	}
}
