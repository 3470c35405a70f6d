package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/EyadAmgad/EduMentorAI/internal/api"
	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/config"
	"github.com/EyadAmgad/EduMentorAI/internal/generate"
	"github.com/EyadAmgad/EduMentorAI/internal/store"
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

	// Initialize the database. PostgreSQL when configured, SQLite otherwise.
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite")
	}
	defer db.Close()

	// Initialize Redis and the exchange locker
	var redisStore *store.RedisStore
	var locks store.ExchangeLocker = store.NewMemoryLocker()
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		locks = &store.RedisExchangeLocker{Redis: redisStore}
		logger.Info().Msg("connected to Redis")
	} else {
		logger.Warn().Msg("no REDIS_URL, using in-memory exchange locks")
	}

	// Pick the answer generator
	var gen generate.Generator
	if cfg.OpenAIAPIKey != "" {
		gen = generate.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		gen = generate.NewScriptedGenerator()
		logger.Warn().Msg("no OPENAI_API_KEY, using scripted generator")
	}
	logger.Info().Str("generator", gen.Name()).Msg("generator configured")

	// Create router
	router := api.NewRouter(logger, api.Deps{
		DB:          db,
		Redis:       redisStore,
		Locks:       locks,
		Generator:   gen,
		ChatTimeout: cfg.ChatTimeout,
		RateLimit: middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		},
	})

	// Create server. The write timeout must outlive a full streamed
	// exchange, so it tracks the chat timeout rather than a flat value.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting EduMentorAI server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
