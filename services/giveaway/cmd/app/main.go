package main

import (
	"ucycle/pkg/cache"
	"ucycle/pkg/config"
	"ucycle/pkg/database"
	"ucycle/pkg/logger"
	"ucycle/pkg/queue"
	"ucycle/pkg/s3"
	"ucycle/services/giveaway/internal/app"

	"github.com/redis/go-redis/v9"
)

// @title           Ucycle Giveaway API
// @version         1.0
// @description     Community giveaway posts with image screening, location fuzzing, reports and moderation.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey AdminPin
// @in header
// @name X-Admin-Pin
// @description Admin PIN, or use "Authorization: Bearer <token>" with a token from /admin/verify.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	defer log.Sync()

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; admin session tokens use the development secret")
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Migrations are handled by goose - see cmd/migrate/main.go

	var redisClient *redis.Client
	if client, err := cache.NewRedisClient(cfg); err != nil {
		log.Warn("Redis unavailable, rate limiting and redis events disabled: %v", err)
	} else {
		redisClient = client
	}

	var queueClient *queue.Client
	if client, err := queue.NewRabbitMQClient(cfg, log); err != nil {
		log.Warn("RabbitMQ unavailable, queue events disabled: %v", err)
	} else {
		queueClient = client
	}

	var s3Client *s3.Client
	if cfg.S3Enabled() {
		client, err := s3.NewClient(cfg)
		if err != nil {
			log.Warn("S3 unavailable, image mirroring disabled: %v", err)
		} else {
			s3Client = client
		}
	}

	app.Run(cfg, log, db, redisClient, queueClient, s3Client)
}
