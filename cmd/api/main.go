package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"claude-gateway/internal/claude"
	"claude-gateway/internal/config"
	apihttp "claude-gateway/internal/http"
	"claude-gateway/internal/registry"
	"claude-gateway/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Registro en memoria por defecto; Redis solo si esta configurado y
	// responde.
	var store registry.Store = registry.NewMemoryStore(cfg.MaxSessions, cfg.SessionTTL())
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			store = registry.NewRedisStore(redisClient, cfg.SessionTTL())
			logger.Info("using redis session registry", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
	}

	runner := claude.NewCLIRunner(cfg.BinaryPath, cfg.Timeout(), cfg.MaxTurns, cfg.AllowedTools, logger)
	chatSvc := service.NewChatService(logger, runner, store, cfg.WorkspaceRoot)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	router := apihttp.NewRouter(logger, cfg.APIKey, chatHandler)

	server := &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("host", cfg.Host),
			zap.String("port", cfg.Port),
			zap.String("binary", cfg.BinaryPath),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}

	// Sin esto un subproceso colgado sobrevive al servicio.
	runner.Shutdown()
	logger.Info("shutdown complete")
}
