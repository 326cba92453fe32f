// @title Survey Grader API
// @version 1.0
// @description API for taking surveys and exams with automatic grading, including LLM-based essay evaluation.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"survey-grader/internal/adapter"
	"survey-grader/internal/adapter/embedding"
	"survey-grader/internal/adapter/textgen"
	"survey-grader/internal/cache"
	"survey-grader/internal/config"
	"survey-grader/internal/database"
	"survey-grader/internal/domain"
	"survey-grader/internal/handler"
	"survey-grader/internal/logger"
	"survey-grader/internal/middleware"
	"survey-grader/internal/monitoring"
	"survey-grader/internal/repository"
	"survey-grader/internal/service"
	"survey-grader/internal/validation"

	_ "survey-grader/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultResultCacheTTL = 24 * time.Hour

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	monitoring.Init()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize Redis client and cache adapter
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize the text generation backend for essay grading
	textGenerator, err := textgen.NewFromConfig(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create text generation client", zap.Error(err))
	}
	appLogger.Info("Text generation client initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))

	// Embedding service backs the similarity cache for essay evaluations.
	// It is optional; without it every essay goes to the LLM.
	var embeddingService domain.EmbeddingService
	if cfg.Embedding.Enabled {
		switch cfg.Embedding.Provider {
		case "ollama":
			appLogger.Info("Initializing Ollama Embedding Service",
				zap.String("server_url", cfg.Embedding.ServerURL),
				zap.String("model", cfg.Embedding.Model))
			embeddingService, err = embedding.NewOllamaEmbeddingService(cfg.Embedding.ServerURL, cfg.Embedding.Model)
			if err != nil {
				appLogger.Fatal("Failed to create Ollama Embedding Service", zap.Error(err))
			}
		case "openai":
			appLogger.Info("Initializing OpenAI Embedding Service", zap.String("model", cfg.Embedding.Model))
			embeddingService, err = embedding.NewOpenAIEmbeddingService(cfg.Embedding.APIKey, cfg.Embedding.Model, cacheAdapter, cfg)
			if err != nil {
				appLogger.Fatal("Failed to create OpenAI Embedding Service", zap.Error(err))
			}
		default:
			appLogger.Fatal(fmt.Sprintf("Unsupported embedding provider: %s. Please check embedding.provider in config.", cfg.Embedding.Provider))
		}
	}

	// Initialize repositories
	surveyRepository := repository.NewSQLXSurveyRepository(db)
	submissionRepository := repository.NewSQLXSubmissionRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Essay grading pipeline: rubric + LLM grader + similarity cache
	rubric := service.NewRubricSource(cfg.Grading.SkillFile)
	essayGrader := service.NewEssayGrader(textGenerator, rubric, cfg.LLM.Timeout)
	cachedEssays := service.NewCachedEssayEvaluator(essayGrader, embeddingService, cacheAdapter, cfg)
	gradingService := service.NewGradingService(cachedEssays, cfg.Grading.MaxConcurrent, cfg.Grading.EssayPassPercentage)
	appLogger.Info("GradingService initialized",
		zap.Int("max_concurrent", cfg.Grading.MaxConcurrent),
		zap.Float64("essay_pass_percentage", cfg.Grading.EssayPassPercentage))

	// Initialize services
	surveyService := service.NewSurveyService(surveyRepository, cacheAdapter, cfg)
	resultCacheTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Result, defaultResultCacheTTL)
	resultCacheService := service.NewResultCacheService(cacheAdapter, resultCacheTTL)
	submissionService := service.NewSubmissionService(surveyRepository, submissionRepository, gradingService, txManager, resultCacheService)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("AuthService initialized")

	// Initialize handlers
	validator := validation.NewValidator()
	surveyHandler := handler.NewSurveyHandler(surveyService)
	submissionHandler := handler.NewSubmissionHandler(surveyService, submissionService, validator)
	authHandler := handler.NewAuthHandler(authService, cfg, validator)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())
	app.Use(monitoring.MetricsMiddleware())

	// Operational endpoints
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// Survey routes (all protected)
	validationMiddleware := middleware.NewValidationMiddleware()
	submitLimiter := middleware.NewSubmitRateLimiter(cfg.Rate.SubmitPerMinute)
	surveyGroup := apiGroup.Group("/surveys", middleware.Protected(authService))
	surveyGroup.Get("/", surveyHandler.ListSurveys)
	surveyGroup.Get("/:id", validationMiddleware.ValidateSurveyIDParam(), surveyHandler.GetSurvey)
	surveyGroup.Post("/:id/submit", validationMiddleware.ValidateSurveyIDParam(), submitLimiter.Handle(), submissionHandler.Submit)
	surveyGroup.Get("/:id/my-result", validationMiddleware.ValidateSurveyIDParam(), submissionHandler.GetMyResult)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		appLogger.Error("Failed to close database connection", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
