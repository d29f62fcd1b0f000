package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/apperrors"
	"alfredoptarigan/job-matcher/internal/config"
	"alfredoptarigan/job-matcher/internal/handlers"
	"alfredoptarigan/job-matcher/internal/logger"
	"alfredoptarigan/job-matcher/internal/repositories"
	"alfredoptarigan/job-matcher/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("config loaded", zap.String("env", cfg.Server.Env))

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database connected")

	jobRepo := repositories.NewJobRepository(db)

	ctx := context.Background()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize gemini", zap.Error(err))
	}
	zlog.Info("gemini initialized",
		zap.String("model", cfg.Gemini.Model),
		zap.String("embedding_model", cfg.Gemini.EmbeddingModel))

	jobStore, err := services.NewJobStore(cfg.Qdrant, cfg.Gemini.EmbeddingDim, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize qdrant", zap.Error(err))
	}

	if err := jobStore.InitCollection(ctx); err != nil {
		zlog.Fatal("failed to initialize qdrant collection", zap.Error(err))
	}
	zlog.Info("job store initialized", zap.String("collection", cfg.Qdrant.Collection))

	tikaService := services.NewTikaService(cfg.Tika.URL)
	extractor := services.NewDocumentExtractor(tikaService)

	embedPool := services.NewEmbedPool(geminiService, cfg.Matcher.EmbedConcurrency, zlog)
	ingestService := services.NewJobIngestService(geminiService, jobStore, jobRepo, embedPool, zlog)
	matcherService := services.NewMatcherService(geminiService, jobStore, cfg.Matcher, cfg.Gemini.MaxRetries, zlog)
	advisorService := services.NewAdvisorService(geminiService, cfg.Chat, cfg.Gemini.MaxRetries, zlog)

	matchHandler := handlers.NewMatchHandler(extractor, matcherService, cfg.Upload.MaxFileSize, zlog)
	jobHandler := handlers.NewJobHandler(ingestService, jobStore, jobRepo, cfg.Qdrant.Collection, zlog)
	chatHandler := handlers.NewChatHandler(advisorService, zlog)

	app := fiber.New(fiber.Config{
		AppName:      "Job Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Upload.MaxFileSize),
		ErrorHandler: errorHandler(zlog),
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/upload-cv-and-match", matchHandler.HandleUploadAndMatch)
	api.Post("/match-jobs", matchHandler.HandleMatchJobs)
	api.Post("/add-job", jobHandler.HandleAddJob)
	api.Post("/add-jobs", jobHandler.HandleAddJobs)
	api.Delete("/jobs/:id", jobHandler.HandleDeleteJob)
	api.Get("/collection-stats", jobHandler.HandleCollectionStats)
	api.Post("/chat", chatHandler.HandleChat)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Job Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload-cv-and-match",
				"POST /api/v1/match-jobs",
				"POST /api/v1/add-job",
				"POST /api/v1/add-jobs",
				"DELETE /api/v1/jobs/:id",
				"POST /api/v1/chat",
				"GET /api/v1/collection-stats",
				"GET /api/v1/health",
				"GET /metrics",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// errorHandler maps the application's error taxonomy to HTTP responses. The
// client always gets a readable reason, never a stack trace.
func errorHandler(zlog *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		retryable := false

		switch {
		case errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, apperrors.ErrUnsupportedFormat):
			code = fiber.StatusBadRequest
		case errors.Is(err, apperrors.ErrExtraction):
			code = fiber.StatusUnprocessableEntity
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			code = fiber.StatusServiceUnavailable
			retryable = true
		case errors.Is(err, apperrors.ErrEmbedding),
			errors.Is(err, apperrors.ErrLLM):
			code = fiber.StatusBadGateway
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
		}

		if code >= fiber.StatusInternalServerError {
			zlog.Error("request failed",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}

		body := fiber.Map{
			"error": err.Error(),
			"code":  code,
		}
		if retryable {
			body["retryable"] = true
		}

		return c.Status(code).JSON(body)
	}
}
