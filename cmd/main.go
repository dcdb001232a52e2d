package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/gcp"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/openai"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/redis"
	"github.com/myaralbdany4-glitch/MoodLens/internal/db"
	"github.com/myaralbdany4-glitch/MoodLens/internal/handlers"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/middleware"
	"github.com/myaralbdany4-glitch/MoodLens/internal/observability"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos"
	"github.com/myaralbdany4-glitch/MoodLens/internal/server"
	"github.com/myaralbdany4-glitch/MoodLens/internal/services"
	"github.com/myaralbdany4-glitch/MoodLens/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "moodlens",
		Environment: logMode,
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	moodSessionRepo := repos.NewMoodSessionRepo(thePG, log)
	userProfileRepo := repos.NewUserProfileRepo(thePG, log)

	// Clients
	log.Info("Setting up outbound clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	identityClient, err := identity.NewClient(log)
	if err != nil {
		log.Error("Could not init identity client", "error", err)
		os.Exit(1)
	}
	var identityCache redis.IdentityCache
	if utils.GetEnv("REDIS_ADDR", "", log) != "" {
		identityCache, err = redis.NewIdentityCache(log)
		if err != nil {
			log.Warn("Redis identity cache init failed, continuing without it", "error", err)
			identityCache = nil
		}
	}
	var transcriber services.Transcriber = openaiClient
	if utils.GetEnv("SPEECH_PROVIDER", "openai", log) == "google" {
		speechService, err := gcp.NewSpeechService(log)
		if err != nil {
			log.Error("Could not init Google speech client", "error", err)
			os.Exit(1)
		}
		transcriber = speechService
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(log, identityClient, identityCache)
	profileService := services.NewProfileService(thePG, log, userProfileRepo)
	analysisService := services.NewAnalysisService(thePG, log, moodSessionRepo, openaiClient, transcriber)
	historyService := services.NewHistoryService(thePG, log, moodSessionRepo)
	feedbackService := services.NewFeedbackService(thePG, log, moodSessionRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler()
	moodHandler := handlers.NewMoodHandler(log, analysisService, historyService, feedbackService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService, profileService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		MoodHandler:    moodHandler,
		AuthMiddleware: authMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}
	if identityCache != nil {
		if err := identityCache.Close(); err != nil {
			log.Warn("Redis close failed", "error", err)
		}
	}
}
