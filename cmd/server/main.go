package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashback-app/internal/auth"
	"flashback-app/internal/config"
	"flashback-app/internal/database"
	"flashback-app/internal/handlers"
	"flashback-app/internal/nsfw"
	"flashback-app/internal/realtime"
	"flashback-app/internal/registry"
	"flashback-app/internal/services"
	"flashback-app/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize group registry
	reg, err := newRegistry(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize group registry")
	}
	defer reg.Close()

	// Initialize services
	authService := auth.NewService(db, cfg)
	notifier := realtime.NewNotifier(reg)
	eventService := services.NewEventService(db, notifier)
	friendshipService := services.NewFriendshipService(db, notifier)
	flashbackService := services.NewFlashbackService(db, nsfw.Disabled{})
	notificationService := services.NewNotificationService(db)

	// Initialize realtime route table
	router := realtime.NewHandlers(db).Routes()
	opts := realtime.Options{
		StrictErrors: cfg.Realtime.StrictErrors,
		SendBuffer:   cfg.Realtime.SendBuffer,
	}

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	eventHandlers := handlers.NewEventHandlers(eventService, flashbackService, authService)
	friendshipHandlers := handlers.NewFriendshipHandlers(friendshipService, authService)
	notificationHandlers := handlers.NewNotificationHandlers(notificationService, authService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, reg, router, db, opts)

	// Setup routes
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Post("/register", authHandlers.Register)
	r.Post("/login", authHandlers.Login)
	r.Group(eventHandlers.Routes)
	r.Group(friendshipHandlers.Routes)
	r.Group(notificationHandlers.Routes)
	r.Get("/ws", wsHandlers.HandleWebSocket)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info().Str("addr", cfg.Server.Port).Str("registry", cfg.Realtime.Backend).Msg("server started")

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

func newRegistry(cfg *config.Config) (registry.Registry, error) {
	if cfg.Realtime.Backend == "nats" {
		return registry.NewNATS(cfg.Realtime.NATSURL)
	}
	return registry.NewMemory(), nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
