package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SparkMatchPlatform/internal/handler"
	"SparkMatchPlatform/internal/middleware"
	"SparkMatchPlatform/internal/pkg/jwt"
	"SparkMatchPlatform/internal/pkg/password"
	repoPostgres "SparkMatchPlatform/internal/repository/postgres"
	repoRedis "SparkMatchPlatform/internal/repository/redis"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/internal/ws"
	"SparkMatchPlatform/pkg/config"
	"SparkMatchPlatform/pkg/database"
	"SparkMatchPlatform/pkg/health"
	"SparkMatchPlatform/pkg/logger"
	"SparkMatchPlatform/pkg/metrics"
	"SparkMatchPlatform/pkg/ratelimit"
	pkgredis "SparkMatchPlatform/pkg/redis"
)

const serviceVersion = "1.0.0"

func main() {
	// Инициализация конфигурации
	configFile := os.Getenv("CONFIG_FILE")
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, "sparkmatch")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		if err := appLogger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}()

	// Инициализация трассировки и метрик
	if err := metrics.InitializeOpenTelemetry("sparkmatch"); err != nil {
		appLogger.Error("Failed to initialize tracing", logger.Error(err))
	}
	metricCollector := metrics.NewMetrics("sparkmatch")

	// Подключение к PostgreSQL
	dbConfig := database.NewConfig()
	dbConfig.Host = cfg.Database.Host
	dbConfig.Port = cfg.Database.Port
	dbConfig.Database = cfg.Database.Name
	dbConfig.User = cfg.Database.User
	dbConfig.Password = cfg.Database.Password

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer connectCancel()

	postgres, err := database.Connect(connectCtx, dbConfig)
	if err != nil {
		appLogger.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer postgres.Close()

	// Подключение к Redis
	redisConfig := pkgredis.NewConfig()
	redisConfig.Addr = cfg.Redis.Addr
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB
	redisConfig.PoolSize = cfg.Redis.PoolSize
	redisConfig.MinIdleConn = cfg.Redis.MinIdleConn

	redisClient, err := pkgredis.Connect(connectCtx, redisConfig)
	if err != nil {
		appLogger.Error("Failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Репозитории
	userRepository := repoPostgres.NewUserRepository(postgres.Pool)
	profileRepository := repoPostgres.NewProfileRepository(postgres.Pool)
	likeRepository := repoPostgres.NewLikeRepository(postgres.Pool)
	matchRepository := repoPostgres.NewMatchRepository(postgres.Pool)
	messageRepository := repoPostgres.NewMessageRepository(postgres.Pool)
	revocationRepository := repoRedis.NewRevocationRepository(redisClient.Client)

	// Общие компоненты
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenTTL(),
		cfg.JWT.RefreshTokenTTL(),
	)
	passwordHasher := password.NewBcryptHasher(0)
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient.Client)
	failOpen := cfg.Security.StoreFailurePolicy == "open"

	// Сервисы
	authService := service.NewAuthService(userRepository, revocationRepository, jwtManager, passwordHasher, failOpen, appLogger)
	matchService := service.NewMatchService(userRepository, profileRepository, likeRepository, matchRepository, appLogger)
	discoveryService := service.NewDiscoveryService(profileRepository, &cfg.Discovery, appLogger)
	chatService := service.NewChatService(matchRepository, messageRepository, &cfg.Chat, appLogger)

	// Websocket чат
	registry := ws.NewConnectionRegistry(appLogger)
	wsChatHandler := ws.NewChatHandler(authService, chatService, registry, rateLimiter,
		cfg.RateLimiting.Chat, failOpen, metricCollector, appLogger)

	// HTTP обработчики и middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimiter, failOpen, metricCollector, appLogger)
	healthChecker := health.NewDependencyChecker(serviceVersion, postgres.Pool, redisClient.Client)

	router := handler.NewRouter(
		handler.NewAuthHandler(appLogger, authService),
		handler.NewMatchHandler(appLogger, matchService),
		handler.NewUserHandler(appLogger, discoveryService),
		handler.NewChatHandler(appLogger, chatService),
		wsChatHandler,
		authMiddleware,
		rateLimitMiddleware,
		healthChecker,
		metricCollector,
		cfg,
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		appLogger.Info("Starting server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", logger.Error(err))
		}
	}()

	// Обработка сигналов для graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", logger.Error(err))
	}

	appLogger.Info("Server stopped")
}
