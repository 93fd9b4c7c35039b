package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neighbor-aid-backend/internal/config"
	"neighbor-aid-backend/internal/handlers"
	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/services"
	"neighbor-aid-backend/internal/store"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to document store
	docs, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}
	if docs != nil {
		defer docs.Close(context.Background())
		log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")
	}

	// Load community state
	community := store.NewCommunity()
	if err := services.Bootstrap(ctx, community, docs, cfg.Community.SeedDemoData); err != nil {
		log.Fatal().Err(err).Msg("Failed to load community")
	}

	// Push notifications
	var pusher services.Pusher
	if cfg.APNs.Enabled {
		apns, err := services.NewAPNsPusher(cfg.APNs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		pusher = apns
	}

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(community.Users, docs, cfg.JWT)
	resolver := services.NewSessionResolver(userService, cfg.Community)
	notificationService := services.NewNotificationService(community.Notifications, community.Users, docs, wsHub, pusher)
	reputationService := services.NewReputationService(
		community.Users,
		community.Prompts,
		docs,
		notificationService,
		services.DefaultBadgeRules,
		cfg.Community.PenaltyAmount,
	)
	requestService := services.NewRequestService(community, docs, notificationService, reputationService, cfg.Community)
	chatService := services.NewChatService(community, docs, notificationService, wsHub)
	eventService := services.NewEventService(community, docs, cfg.Community.DefaultEventPhoto)

	var photoHandler *handlers.PhotoHandler
	if cfg.AWS.S3Bucket != "" {
		photoService, err := services.NewPhotoService(ctx, cfg.AWS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create photo service")
		}
		photoHandler = handlers.NewPhotoHandler(photoService)
	} else {
		log.Warn().Msg("S3 bucket not configured, photo uploads disabled")
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	requestHandler := handlers.NewRequestHandler(requestService)
	reviewHandler := handlers.NewReviewHandler(reputationService)
	chatHandler := handlers.NewChatHandler(chatService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, resolver)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.Register)
		r.Post("/sessions", userHandler.SignIn)

		// Session routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(resolver))

			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateMe)
			r.Post("/me/complete", userHandler.CompleteProfile)
			r.Put("/me/push-token", userHandler.UpdatePushToken)
			r.Get("/me/invites", userHandler.Invites)

			r.Get("/requests", requestHandler.Feed)
			r.Post("/requests", requestHandler.Create)
			r.Get("/requests/mine", requestHandler.Mine)
			r.Post("/requests/{id}/offers", requestHandler.OfferHelp)
			r.Put("/requests/{id}/status", requestHandler.UpdateStatus)
			r.Post("/requests/{id}/report-non-return", requestHandler.ReportNonReturn)
			r.Post("/requests/{id}/denounce", requestHandler.Denounce)
			r.Post("/requests/{id}/dismiss", requestHandler.Dismiss)

			r.Get("/reviews/pending", reviewHandler.Pending)
			r.Post("/reviews", reviewHandler.Submit)

			r.Get("/chats/{partnerId}", chatHandler.Thread)
			r.Post("/chats/{partnerId}", chatHandler.Send)

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Get("/events", eventHandler.List)
			r.Post("/events", eventHandler.Create)
			r.Post("/events/{id}/interest", eventHandler.ToggleInterest)

			if photoHandler != nil {
				r.Post("/uploads", photoHandler.UploadPhoto)
			}
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("no_session_policy", cfg.Community.NoSessionPolicy).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	notificationService.Wait()

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
