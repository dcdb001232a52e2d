package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/myaralbdany4-glitch/MoodLens/internal/handlers"
	"github.com/myaralbdany4-glitch/MoodLens/internal/middleware"
	"github.com/myaralbdany4-glitch/MoodLens/internal/utils"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	MoodHandler    *handlers.MoodHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("moodlens"))
	router.Use(middleware.RequestID())

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.GET("/oauth/google/redirect_url", cfg.AuthHandler.GetRedirectURL)
		api.POST("/sessions", cfg.AuthHandler.CreateSession)
		api.GET("/logout", cfg.AuthHandler.Logout)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// User
	protected.GET("/users/me", cfg.UserHandler.GetMe)
	// Analysis
	protected.POST("/analyze/face", cfg.MoodHandler.AnalyzeFace)
	protected.POST("/analyze/voice", cfg.MoodHandler.AnalyzeVoice)
	// History & feedback
	protected.GET("/mood-history", cfg.MoodHandler.GetHistory)
	protected.POST("/feedback/:sessionId", cfg.MoodHandler.SubmitFeedback)

	return router
}

func allowedOrigins() []string {
	raw := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", nil)
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}
