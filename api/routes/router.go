// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"organizer/internal/bookings"
	"organizer/internal/fees"
	"organizer/internal/notifications"
	"organizer/internal/organizations"
	"organizer/internal/shared/config"
	"organizer/internal/shared/database"
	"organizer/internal/shared/middleware"
	"organizer/internal/splits"
	"organizer/internal/users"
	"organizer/pkg/cache"
	"organizer/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "organizer-backend"

// Router holds all route dependencies
type Router struct {
	config        *config.Config
	db            *database.DB
	notifications *notifications.Service
	log           *logger.Logger

	splitService splits.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier *notifications.Service, log *logger.Logger) *Router {
	return &Router{
		config:        cfg,
		db:            db,
		notifications: notifier,
		log:           log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	r.setupDocsRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupSplitRoutes(api)
	}
}

// SplitService is available once SetupRoutes has run.
func (r *Router) SplitService() splits.Service {
	return r.splitService
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		checks := gin.H{"database": "ok", "notifications": "ok"}
		healthy := true

		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if r.notifications != nil {
			if err := r.notifications.HealthCheck(c.Request.Context()); err != nil {
				checks["notifications"] = err.Error()
				healthy = false
			}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"checks":    checks,
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"checks":    checks,
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"kafka_enabled": r.config.Kafka.Enabled,
			"jobs_enabled":  r.config.Jobs.Enabled,
			"timestamp":     time.Now(),
		})
	})
}

// setupDocsRoutes serves the OpenAPI document and a Swagger UI pointing at it.
func (r *Router) setupDocsRoutes(engine *gin.Engine) {
	engine.StaticFile("/openapi.yaml", "api/openapi.yaml")
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.yaml")))
}

func (r *Router) setupSplitRoutes(rg *gin.RouterGroup) {
	pg := r.db.PostgreSQL

	userRepo := users.NewRepository(pg)
	orgService := organizations.NewService(organizations.NewRepository(pg))
	bookingRepo := bookings.NewRepository(pg)

	var cacheSvc cache.Service
	if r.db.Redis != nil {
		cacheSvc = cache.NewService(r.db.Redis)
	}
	feeSettings := fees.NewSettingsProvider(fees.NewSettingsRepository(pg), cacheSvc, fees.PlatformFees{
		FeeBps:        r.config.Fees.PlatformFeeBps,
		FeeFixedCents: int64(r.config.Fees.PlatformFeeFixedCents),
		FeeMode:       fees.ParseFeeMode(r.config.Fees.DefaultFeeMode, fees.FeeModeAdded),
	})

	var publisher notifications.Publisher = notifications.NewLogPublisher(r.log)
	if r.notifications != nil {
		publisher = r.notifications.Publisher
	}

	r.splitService = splits.NewService(
		splits.NewRepository(pg, bookingRepo),
		bookingRepo,
		orgService,
		feeSettings,
		publisher,
		r.log,
		splits.WithDefaultCurrency(r.config.Fees.DefaultCurrency),
	)

	splits.SetupSplitRoutes(rg, splits.NewController(r.splitService), splits.RouteGuards{
		Auth:     middleware.JWTAuthWithConfig(r.config),
		Profile:  users.RequireProfile(userRepo),
		OrgRole:  organizations.RequireRole(orgService, organizations.BookingManagerRoles...),
		Internal: middleware.RequireInternalSecret(r.config.Internal.WebhookSecret),
	})
}
