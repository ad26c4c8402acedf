package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/civicui/enhance-go/api"
	"github.com/civicui/enhance-go/config"
	"github.com/civicui/enhance-go/enhance/fileinput"
	"github.com/civicui/enhance-go/enhance/inpagenav"
	"github.com/civicui/enhance-go/events"
	"github.com/civicui/enhance-go/registry"
	"github.com/civicui/enhance-go/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	reg := registry.NewRegistry()
	log.Println("Enhancement registry initialized")

	// Start cleanup routine
	registry.StartCleanupRoutine(reg, config.CleanupInterval, config.TargetTTL)

	fileEnhancer := fileinput.NewEnhancer(reg, services.Broadcaster, config.AnnounceDelay, config.PreviewMaxPx)
	navEnhancer := inpagenav.NewEnhancer(reg, services.Broadcaster)
	processor := events.NewProcessor(reg)

	handlers := api.NewHandlers(reg, fileEnhancer, navEnhancer, processor, services.Broadcaster)

	r := gin.New()
	r.Use(api.FilteredLogger(), gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins: config.CORSOrigins,
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"If-None-Match", "X-Requested-With",
		},
		AllowCredentials: true,
		ExposeHeaders: []string{
			"Content-Type", "ETag",
		},
	}))

	r.GET("/api/v1/health", handlers.HealthHandler)
	r.GET("/api/v1/notifications/ws", handlers.NotificationsWSHandler)

	v1 := r.Group("/api/v1")
	v1.Use(api.AuthRequired(config.JWTSecret))
	{
		enhance := v1.Group("/enhance")
		{
			enhance.POST("/file-input", handlers.EnhanceFileInputHandler)
			enhance.POST("/in-page-nav", handlers.EnhanceInPageNavHandler)
		}

		targets := v1.Group("/targets")
		{
			targets.POST("/:id/events", handlers.ApplyEventsHandler)
			targets.GET("/:id/fragment", handlers.GetFragmentHandler)
			targets.DELETE("/:id", handlers.TeardownHandler)
		}
	}

	log.Println("Starting server on :" + config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
