package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/api/handlers"
	"github.com/dataspeak/backend/internal/cache/redis"
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/engine"
	"github.com/dataspeak/backend/internal/ingestion"
	"github.com/dataspeak/backend/internal/language"
	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/metrics"
	"github.com/dataspeak/backend/internal/middleware/ratelimit"
	"github.com/dataspeak/backend/internal/middleware/security"
	"github.com/dataspeak/backend/internal/middleware/validation"
	"github.com/dataspeak/backend/internal/normalize"
	"github.com/dataspeak/backend/internal/sqlgen"
	"github.com/dataspeak/backend/internal/storage/sqlite"
	"github.com/dataspeak/backend/internal/structure"
	"github.com/dataspeak/backend/internal/temporal"
	"github.com/dataspeak/backend/pkg/config"
	appLogger "github.com/dataspeak/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting DataSpeak API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	loader := lexicon.NewLoader(cfg.Dictionaries.Path, appLogger.Log)
	dicts := loader.Load()
	idx := lexicon.NewIndex(dicts, appLogger.Log)
	for category, count := range idx.Stats() {
		metrics.DictionaryEntries.WithLabelValues(category).Set(float64(count))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(
			context.Background(),
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	metrics.Init()

	detector := language.NewDetector(idx, appLogger.Log)
	normalizer := normalize.NewNormalizer(idx, appLogger.Log)
	classifier := classify.NewClassifier(idx, appLogger.Log)
	builder := structure.NewBuilder(idx, appLogger.Log)
	resolver := temporal.NewResolver(appLogger.Log)
	generator := sqlgen.NewGenerator(cfg.Dataset.Table, resolver, appLogger.Log)

	queryEngine := engine.NewEngine(
		idx,
		normalizer,
		detector,
		classifier,
		builder,
		generator,
		sqliteClient,
		cacheClient,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Dataset.ExecuteSQL,
	)

	processor := ingestion.NewProcessor(sqliteClient)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.Log,
	}))

	queryHandler := handlers.NewQueryHandler(queryEngine)
	datasetHandler := handlers.NewDatasetHandler(processor, cacheClient, cfg.Dataset.Table)
	feedbackHandler := handlers.NewFeedbackHandler(queryEngine)
	dictionaryHandler := handlers.NewDictionaryHandler(loader, idx)

	api := app.Group("/api/v1")

	api.Post("/query", queryHandler.HandleQuery)
	api.Get("/query/history", queryHandler.GetQueryHistory)

	api.Post("/datasets", datasetHandler.UploadDataset)

	api.Post("/feedback", feedbackHandler.SubmitFeedback)

	api.Get("/dictionaries/stats", dictionaryHandler.GetStats)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
