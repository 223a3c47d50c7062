package main

import (
	"os"
	"os/signal"
	"syscall"

	"ucycle/pkg/cache"
	"ucycle/pkg/config"
	"ucycle/pkg/logger"
	"ucycle/pkg/queue"
	"ucycle/services/giveaway/internal/alerts"
	"ucycle/services/giveaway/internal/entity"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	defer log.Sync()

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer queueClient.Close()

	var redisClient *redis.Client
	if client, err := cache.NewRedisClient(cfg); err != nil {
		log.Warn("Redis unavailable, alerts are only logged: %v", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	watcher := alerts.NewWatcher(cfg.ReportAlertThreshold, redisClient, log)
	if err := queueClient.Consume(queue.AlertsQueue, []string{entity.EventReportFiled}, watcher.Handle); err != nil {
		log.Error("Failed to start consumer: %v", err)
		panic(err)
	}

	log.Info("Alert watcher running (threshold %d)", cfg.ReportAlertThreshold)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Alert watcher exited")
}
