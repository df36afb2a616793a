package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/Gilbert-2/security-threat-detection-sub000/api/swagger"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/server"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/cache"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/config"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/database"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/logger"
)

// @title Security Threat Detection API
// @version 1.0.0
// @description Admin dashboard API for browser based security monitoring
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.New(cfg, logr, db, redisClient)
	if err != nil {
		logr.Sugar().Fatalw("failed to build server", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.Start(ctx)
	defer srv.Stop()

	if err := srv.Run(ctx); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
