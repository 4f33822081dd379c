package routes

import (
	"net/http"
	"strings"
	"time"

	"roombooking/handlers"
	"roombooking/middleware"
	"roombooking/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options tunes the global middleware.
type Options struct {
	AllowedOrigins    string // comma separated; empty disables CORS
	MaxRequestsPerMin int
}

// RegisterSessionRoutes registers login and logout. Login is exempt from the
// anti-forgery check because the token is issued by it.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/session")
	{
		api.POST("/", hb.LoginHandler)
		api.DELETE("/", middleware.CSRFMiddleware(), hb.LogoutHandler)
	}
}

// RegisterAvailabilityRoutes registers the availability endpoint.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.UserRepo))
		api.GET("/", hb.AvailabilityHandler)
	}
}

// RegisterReservationRoutes registers the reservation endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		// Protected routes (Require Authentication)
		api.Use(middleware.SessionAuthMiddleware(hb.UserRepo), middleware.CSRFMiddleware())
		api.GET("/", hb.ListReservationsHandler)
		api.POST("/", hb.CreateReservationHandler)
		api.POST("/:id/update/", hb.UpdateReservationHandler)
		api.POST("/:id/cancel/", hb.CancelReservationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(utils.ErrorHandler())
	if origins := splitOrigins(opts.AllowedOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.CSRFHeader},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))

	RegisterSessionRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterHealthRoute(r)
}

// NewSimulatorRouter builds a gin engine serving the simulated API.
func NewSimulatorRouter(hb *handlers.HandlerBundle, opts Options) *gin.Engine {
	r := gin.New()
	RegisterRoutes(r, hb, opts)
	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
