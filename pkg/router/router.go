package router

import (
	"npc-dialogue-engine/backend/internal/api"
	"npc-dialogue-engine/backend/internal/ws"
	"npc-dialogue-engine/backend/pkg/di"
	"npc-dialogue-engine/backend/pkg/errors"
	"npc-dialogue-engine/backend/pkg/logger"
	"npc-dialogue-engine/backend/pkg/metrics"
	"npc-dialogue-engine/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	// Configure Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	// Rate limit by client IP
	rateLimiter := middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
		Limit: rate.Limit(cfg.Security.RateLimit),
		Burst: cfg.Security.RateLimitBurst,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		ExpiryDuration: middleware.DefaultRateLimiterOptions().ExpiryDuration,
	})
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	// Add CORS middleware
	r.Engine.Use(corsMiddleware())

	characterHandler := api.NewCharacterHandler(r.Container.Registry)
	dialogueHandler := api.NewDialogueHandler(r.Container.Coordinator)

	// API version 1 routes
	v1 := r.Engine.Group("/api/v1")
	{
		v1.GET("/health", r.Container.Health.Handler())
		v1.POST("/characters", characterHandler.CreateCharacter)
		v1.GET("/characters", characterHandler.ListCharacters)
		v1.POST("/dialogue/generate", dialogueHandler.GenerateDialogue)
		v1.POST("/dialogue/branching", dialogueHandler.GenerateBranching)
		v1.POST("/translate", dialogueHandler.Translate)
		v1.GET("/conversations/:characterId/:sessionId", dialogueHandler.GetConversation)
	}

	// Legacy paths kept for the original game client
	legacy := r.Engine.Group("/api")
	{
		legacy.POST("/character/create", characterHandler.CreateCharacter)
		legacy.GET("/characters", characterHandler.ListCharacters)
		legacy.POST("/dialogue/generate", dialogueHandler.GenerateDialogue)
		legacy.POST("/dialogue/branching", dialogueHandler.GenerateBranching)
		legacy.POST("/translate", dialogueHandler.Translate)
		legacy.GET("/conversation/:characterId/:sessionId", dialogueHandler.GetConversation)
	}

	// Prometheus metrics
	r.Engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Realtime channel, one per character/session pair
	r.Engine.GET("/ws/:characterId/:sessionId", func(c *gin.Context) {
		ws.ServeWs(r.Container.Channels, c)
	})
}

// CORS middleware that also allows WebSocket-specific headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
