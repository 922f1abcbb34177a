package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liveparallel-server/internal/auth"
	"liveparallel-server/internal/cache"
	"liveparallel-server/internal/config"
	"liveparallel-server/internal/handler"
	"liveparallel-server/internal/repository"
	"liveparallel-server/internal/service"
	"liveparallel-server/migrations"
	"liveparallel-server/pkg/database"
	"liveparallel-server/pkg/logger"
	"liveparallel-server/pkg/migration"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск LiveParallel Scenario Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err) // zap еще не создан
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx := context.Background()

	// Подключение к PostgreSQL
	dbPool, err := database.NewPool(ctx, database.Config{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer dbPool.Close()

	// Миграции схемы
	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, dbPool)
	if err := migrator.Up(ctx); err != nil {
		zapLogger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	// Движок генерации: заглушка по умолчанию, openai как drop-in замена
	var engine service.GenerationEngine
	switch cfg.GenerationEngine {
	case "openai":
		engine, err = service.NewOpenAIEngine(service.OpenAIEngineConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать OpenAI движок", zap.Error(err))
		}
	default:
		engine = service.NewStubGenerationEngine(cfg.StubEngineDelay, zapLogger)
	}
	zapLogger.Info("Generation engine initialized", zap.String("engine", cfg.GenerationEngine))

	// Проверка токенов Firebase (или debug-режим для локальной разработки)
	var verifier auth.IdentityVerifier
	if !cfg.AuthDebugMode {
		verifier, err = auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsPath, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать Firebase верификатор", zap.Error(err))
		}
	}

	// Сборка ядра: репозиторий -> кэш -> контроллер жизненного цикла
	scenarioRepo := repository.NewPgScenarioRepository(dbPool, zapLogger)
	scenarioCache := cache.NewScenarioCache(zapLogger)
	scenarioService := service.NewScenarioService(scenarioRepo, engine, scenarioCache, zapLogger)
	scenarioHandler := handler.NewScenarioHandler(scenarioService, zapLogger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(handler.ZapLoggingMiddleware(zapLogger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	authMiddleware := handler.AuthMiddleware(verifier, cfg.AuthDebugMode, zapLogger)
	scenarioHandler.RegisterRoutes(router, authMiddleware)

	// Prometheus middleware применяется после регистрации роутов
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Ошибка при graceful shutdown", zap.Error(err))
	}

	log.Println("Scenario Service успешно остановлен")
}
