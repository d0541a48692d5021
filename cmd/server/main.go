package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nandeesh-nh/lan-chat/internal/api"
	"github.com/Nandeesh-nh/lan-chat/internal/chatlog"
	"github.com/Nandeesh-nh/lan-chat/internal/config"
	"github.com/Nandeesh-nh/lan-chat/internal/files"
	"github.com/Nandeesh-nh/lan-chat/internal/handlers"
	"github.com/Nandeesh-nh/lan-chat/internal/metrics"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
	"github.com/Nandeesh-nh/lan-chat/internal/presence"
	"github.com/Nandeesh-nh/lan-chat/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Account store: PostgreSQL when configured, SQLite otherwise
	var users store.UserStore
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		users = pg
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sq, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		users = sq
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite account store")
	}
	defer users.Close()

	// Redis, only for rate limiting
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		logger.Info().Msg("connected to Redis, rate limiting enabled")
	}

	// Upload store
	fs, err := files.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("upload directory unavailable")
	}

	// The shared message log and presence tracker
	chat := chatlog.New()
	pres := presence.New(cfg.PresenceTimeout, logger, func(username string) {
		_, _ = chat.Append("System", "", models.KindSystem, username+" disconnected", nil)
		metrics.OnlineUsers.Dec()
	})

	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go pres.Run(reaperCtx, time.Minute)

	// Create router
	h := handlers.NewHandler(chat, users, pres, fs, rdb, cfg)
	router := api.NewRouter(logger, h, rdb, cfg)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // uploads and downloads take a while
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
