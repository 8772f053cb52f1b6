package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/oskarkuder/lesson-notes-ai/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/oskarkuder/lesson-notes-ai/internal/ai"
	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/cache"
	"github.com/oskarkuder/lesson-notes-ai/internal/config"
	"github.com/oskarkuder/lesson-notes-ai/internal/db"
	"github.com/oskarkuder/lesson-notes-ai/internal/handler"
	"github.com/oskarkuder/lesson-notes-ai/internal/repository"
	"github.com/oskarkuder/lesson-notes-ai/internal/router"
	"github.com/oskarkuder/lesson-notes-ai/internal/service"
	"github.com/oskarkuder/lesson-notes-ai/internal/session"
)

// @title Lesson Notes AI API
// @version 1.0
// @description Recording sessions, AI-generated lesson notes, note storage, and plan upgrades with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Printf("Warning: redis unreachable, identity sessions degraded: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessionStore := auth.NewSessionStore(cacheClient)

	// AI boundary and recording-session state machine
	generator := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.TranscribeModel, cfg.NotesModel)
	manager := session.NewManager(generator)

	// Services
	authService := service.NewAuthService(userRepo, noteRepo, jwtService, sessionStore)
	sessionService := service.NewSessionService(manager, noteRepo, cfg.FreeRecordingLimit)
	noteService := service.NewNoteService(noteRepo, manager)
	paymentService := service.NewPaymentService(paymentRepo, authService, cfg.ProPriceUSD)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, sessionService, sessionStore)
	sessionHandler := handler.NewSessionHandler(sessionService, noteService, sessionStore)
	noteHandler := handler.NewNoteHandler(noteService, sessionStore)
	paymentHandler := handler.NewPaymentHandler(paymentService, sessionService, sessionStore)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		sessionHandler,
		noteHandler,
		paymentHandler,
	)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: http://%s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
