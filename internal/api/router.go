package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/config"
	"github.com/serendigo/serendigo-backend-go/internal/handler"
	"github.com/serendigo/serendigo-backend-go/internal/middleware"
	"github.com/serendigo/serendigo-backend-go/internal/service"
)

// Services are the dependencies the routes are served from.
type Services struct {
	Sessions *service.SessionService
	Auth     *service.AuthService
	Guide    *service.GuideService
	History  *service.HistoryService
	Places   *service.PlacesService
}

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "SerendiGo BFF is running",
			"sessions": svc.Sessions.Count(),
		})
	})

	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	detourHandler := handler.NewDetourHandler(svc.Sessions)
	authHandler := handler.NewAuthHandler(svc.Auth)
	guideHandler := handler.NewGuideHandler(svc.Guide)
	historyHandler := handler.NewHistoryHandler(svc.History)
	placesHandler := handler.NewPlacesHandler(svc.Places)

	requireAuth := middleware.RequireAuth(svc.Auth)
	optionalAuth := middleware.OptionalAuth(svc.Auth)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}

		sessions := api.Group("/detour/sessions", optionalAuth)
		{
			sessions.POST("", detourHandler.CreateSession)
			sessions.GET("/:id", detourHandler.GetSession)
			sessions.DELETE("/:id", detourHandler.CloseSession)
			sessions.POST("/:id/retry", detourHandler.Retry)
			sessions.PUT("/:id/position", detourHandler.UpdatePosition)
			sessions.GET("/:id/map", detourHandler.GetMap)
			sessions.GET("/:id/attempts", detourHandler.GetAttempts)
			sessions.POST("/:id/announce", detourHandler.Announce)
			sessions.POST("/:id/audio", detourHandler.ToggleAudio)
		}

		api.GET("/places/predictions", placesHandler.Predictions)
		api.GET("/destinations/predictions", placesHandler.Predictions)
		api.POST("/destinations/register", guideHandler.RegisterDestination)

		visits := api.Group("/visits", optionalAuth)
		{
			visits.POST("/register", guideHandler.RegisterVisit)
			visits.GET("/recent", guideHandler.RecentVisits)
		}

		history := api.Group("/guide-history", requireAuth)
		{
			history.GET("", historyHandler.List)
			history.GET("/:id", historyHandler.Detail)
			history.POST("/:id/repeat", historyHandler.Repeat)
		}
	}

	return r
}
