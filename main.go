package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"eventure/internal/auth"
	"eventure/internal/config"
	"eventure/internal/database"
	"eventure/internal/events"
	event_db "eventure/internal/events/db"
	"eventure/internal/events/event_api"
	"eventure/internal/logger"
	"eventure/internal/models"
	"eventure/internal/tasks"
	task_db "eventure/internal/tasks/db"
	"eventure/internal/tasks/task_api"
	"eventure/internal/users"
	user_db "eventure/internal/users/db"
	"eventure/internal/users/user_api"
)

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Eventure service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	mongoClient, err := database.Connect(ctx, cfg.Mongo.URI, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Mongo disconnect failed: %v", err))
		}
	}()

	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, mongoDB); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to create indexes: %v", err))
	}
	logger.Info("DATABASE", "Indexes ensured successfully")

	redisClient, err := auth.InitializeIdentityCache(cfg.Redis.Addr, logger)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()

	userDB := &user_db.DB{Mongo: mongoDB}
	eventDB := &event_db.DB{Mongo: mongoDB}
	taskDB := &task_db.DB{Mongo: mongoDB}

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	identityCache := auth.NewIdentityCache(redisClient, cfg.Auth.IdentityCacheTTL)
	authMiddleware := auth.NewMiddleware(tokenService, userDB, identityCache, logger)

	userService := users.NewService(userDB, tokenService)
	eventService := events.NewService(eventDB, userDB, taskDB)
	taskService := tasks.NewService(taskDB, eventDB, userDB)

	userHandler := user_api.NewHandler(userService, logger)
	eventHandler := event_api.NewHandler(eventService, logger)
	taskHandler := task_api.NewHandler(taskService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Public routes ---
	r.Post("/api/admin/signup", userHandler.RegisterAdmin)
	r.Post("/api/admin/login", userHandler.AdminLogin)
	r.Post("/api/users/signup", userHandler.Register)
	r.Post("/api/users/login", userHandler.Login)
	r.Get("/api/users/alluser-count", userHandler.Count)
	r.Post("/api/participants/login", userHandler.ParticipantLogin)
	logger.Info("ROUTER", "Public signup/login endpoints registered")

	// --- Protected routes ---
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		logger.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/api/users", func(r chi.Router) {
			r.With(auth.RequireRole(models.RoleAdmin)).Get("/", userHandler.List)
			r.With(auth.RequireRole(models.RoleAdmin)).Delete("/{id}", userHandler.Delete)
		})
		logger.Info("ROUTER", "User routes registered under /api/users")

		r.Route("/api/events", func(r chi.Router) {
			managerial := auth.RequireRole(models.RoleAdmin, models.RoleEventManager)

			r.Get("/", eventHandler.List)
			r.With(managerial).Post("/", eventHandler.Create)
			r.With(managerial).Get("/count", eventHandler.Count)
			r.With(managerial).Get("/upcoming", eventHandler.ListUpcoming)
			r.With(managerial).Get("/managers", eventHandler.ListManagers)
			r.With(managerial).Get("/managers/count", eventHandler.CountManagers)
			r.With(managerial).Get("/participants", eventHandler.ListParticipants)
			r.With(managerial).Get("/participants/count", eventHandler.CountParticipants)
			r.With(managerial).Put("/w/{id}", eventHandler.UpdateUnrestricted)
			r.With(managerial).Delete("/w/{id}", eventHandler.DeleteUnrestricted)
			r.Get("/{id}", eventHandler.Get)
			r.With(managerial).Put("/{id}", eventHandler.Update)
			r.With(managerial).Delete("/{id}", eventHandler.Delete)
		})
		logger.Info("ROUTER", "Event routes registered under /api/events")

		r.Route("/api/tasks", func(r chi.Router) {
			managerial := auth.RequireRole(models.RoleAdmin, models.RoleEventManager)

			r.With(managerial).Post("/", taskHandler.Create)
			r.With(managerial).Get("/", taskHandler.List)
			r.With(auth.RequireRole(models.RoleEventManager)).Get("/assigned", taskHandler.Assigned)
			r.With(managerial).Get("/{id}", taskHandler.Get)
			r.With(managerial).Put("/{id}", taskHandler.Update)
			r.With(managerial).Delete("/{id}", taskHandler.Delete)
		})
		logger.Info("ROUTER", "Task routes registered under /api/tasks")

		r.Route("/api/participants", func(r chi.Router) {
			participant := auth.RequireRole(models.RoleParticipant)
			r.With(participant).Get("/pevents", eventHandler.ListForParticipant)
			r.With(participant).Get("/profile", userHandler.Profile)
		})
		logger.Info("ROUTER", "Participant routes registered under /api/participants")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Eventure service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "Eventure service shutdown complete")
	}
}
