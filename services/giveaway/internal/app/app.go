package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ucycle/pkg/clock"
	"ucycle/pkg/config"
	"ucycle/pkg/geo"
	"ucycle/pkg/jwt"
	"ucycle/pkg/logger"
	"ucycle/pkg/middleware"
	"ucycle/pkg/queue"
	"ucycle/pkg/s3"
	"ucycle/services/giveaway/internal/alerts"
	giveawayHTTP "ucycle/services/giveaway/internal/controller/http"
	"ucycle/services/giveaway/internal/repo/persistent"
	"ucycle/services/giveaway/internal/safety"
	"ucycle/services/giveaway/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "ucycle/services/giveaway/docs" // Swagger docs
)

// Server holds the wired service. Optional clients (redis, queue, s3) may
// be nil; the features that need them are then switched off.
type Server struct {
	Router      *gin.Engine
	PostUseCase usecase.PostUseCase
	cfg         *config.Config
}

func NewServer(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client, s3Client *s3.Client) (*Server, error) {
	clk := clock.System()
	ids := clock.UUID()

	// Initialize repositories
	postRepo := persistent.NewPostRepository(db)
	reportRepo := persistent.NewReportRepository(db)
	statsRepo := persistent.NewStatsRepository(db)

	// Image safety
	var classifier safety.Classifier = safety.AllowAllClassifier{}
	var prompter safety.Prompter
	if cfg.GeminiAPIKey != "" {
		gemini, err := safety.NewGeminiPrompter(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		prompter = gemini
		classifier = safety.NewLLMClassifier(gemini)
	} else {
		log.Warn("[SAFETY] GEMINI_API_KEY not set; images are not screened and analysis returns a generic suggestion")
	}
	gate := safety.NewGate(classifier, cfg.SafetyTimeout, log)
	analyzer := safety.NewAnalyzer(prompter, log)

	var publishers usecase.MultiPublisher
	if queueClient != nil {
		publishers = append(publishers, usecase.NewQueuePublisher(queueClient))
	}
	if redisClient != nil {
		publishers = append(publishers, usecase.NewRedisPublisher(redisClient))
	}
	var events usecase.EventPublisher = usecase.NopPublisher{}
	if len(publishers) > 0 {
		events = publishers
	}

	var mirror usecase.ImageMirror
	if s3Client != nil {
		mirror = s3Client
	}

	// Initialize use cases
	statsUseCase := usecase.NewStatsUseCase(postRepo, reportRepo, statsRepo, clk, log)
	postUseCase := usecase.NewPostUseCase(
		postRepo, gate, analyzer, geo.NewFuzzer(), statsUseCase, events, mirror, clk, ids,
		usecase.PostSettings{DefaultExpiryHours: cfg.DefaultExpiryHours, MaxImagesPerPost: cfg.MaxImagesPerPost},
		log,
	)
	reportUseCase := usecase.NewReportUseCase(postRepo, reportRepo, statsUseCase, events, clk, ids, log)

	// Admin access
	jwtService := jwt.NewService(cfg.JWTSecret)
	pins, err := middleware.NewPinAuthorizer(cfg.AdminPIN)
	if err != nil {
		return nil, err
	}
	adminAuth := middleware.AnyAuthorizer{pins, middleware.NewTokenAuthorizer(jwtService)}

	// Initialize HTTP handlers
	healthHandler := giveawayHTTP.NewHealthHandler(clk)
	postHandler := giveawayHTTP.NewPostHandler(postUseCase, log)
	reportHandler := giveawayHTTP.NewReportHandler(reportUseCase, log)
	adminHandler := giveawayHTTP.NewAdminHandler(postUseCase, reportUseCase, statsUseCase, pins, jwtService, log)
	alertsHandler := giveawayHTTP.NewAlertsHandler(alerts.NewWatcher(cfg.ReportAlertThreshold, redisClient, log), log)

	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", healthHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limit := middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute)

	api := r.Group("/api")
	{
		api.GET("/", healthHandler.Root)
		api.GET("/health", healthHandler.Health)

		api.POST("/analyze-image", limit, postHandler.AnalyzeImage)
		api.POST("/posts", limit, postHandler.CreatePost)
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:id", postHandler.GetPost)
		api.PATCH("/posts/:id/collected", postHandler.MarkCollected)
		api.GET("/og/:id", postHandler.OpenGraph)

		api.POST("/reports", limit, reportHandler.CreateReport)
		api.GET("/reports", reportHandler.ListReports)

		api.POST("/admin/verify", limit, adminHandler.Verify)
	}

	admin := api.Group("/admin")
	admin.Use(limit, middleware.AdminMiddleware(adminAuth))
	{
		admin.DELETE("/posts/:id", adminHandler.RemovePost)
		admin.PATCH("/reports/:id/reviewed", adminHandler.MarkReportReviewed)
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/stats/daily", adminHandler.DailyStats)
		admin.GET("/posts", adminHandler.ListAllPosts)
		admin.GET("/alerts", alertsHandler.ListAlerts)
	}

	return &Server{Router: r, PostUseCase: postUseCase, cfg: cfg}, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Admin-Pin"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client, s3Client *s3.Client) {
	server, err := NewServer(cfg, log, db, redisClient, queueClient, s3Client)
	if err != nil {
		log.Error("Failed to build giveaway service: %v", err)
		panic(err)
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		server.PostUseCase.RunSweeper(sweepCtx, cfg.SweepInterval)
	}()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: server.Router,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Giveaway service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down giveaway service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server first so in-flight requests can still reach the stores
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopSweeper()
	<-sweeperDone

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Giveaway service exited")
}
