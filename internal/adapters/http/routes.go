package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shyjal/goplaces/internal/adapters/http/handler"
	"github.com/shyjal/goplaces/internal/adapters/http/middleware"
	"github.com/shyjal/goplaces/internal/domain"
)

type RouterConfig struct {
	GenerationHandler *handler.GenerationHandler
	Limiter           domain.RequestLimiterRepository
	Logger            domain.LoggingRepository
	WebDir            string
}

func SetupRoutes(config RouterConfig) *gin.Engine {

	g := gin.New()
	g.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"https://*", "http://*"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.AddRequestID(),
		middleware.PanicRecoveryMiddleware(config.Logger),
		middleware.LoggingRequestMiddleware(config.Logger),
	)

	// api routes
	api := g.Group("/api")
	api.Use(middleware.RateLimiterMiddleware(config.Limiter, config.Logger))
	{
		api.Handle("GET", "/config", config.GenerationHandler.ClientConfigHandler)
		api.Handle("POST", "/generate",
			middleware.RequireMultipart(config.GenerationHandler.MaxUploadSize),
			config.GenerationHandler.GenerateImageHandler)
	}

	// public routes
	g.Handle("GET", "/", config.GenerationHandler.HomePageHandler)
	g.Handle("GET", "/health", config.GenerationHandler.HealthHandler)

	// browser client
	if config.WebDir != "" {
		g.Static("/app", config.WebDir)
	}

	return g

}
