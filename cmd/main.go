package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itbasis/go-clock"
	"github.com/pedrowallacee/palpitarena-v2/config"
	"github.com/pedrowallacee/palpitarena-v2/db"
	"github.com/pedrowallacee/palpitarena-v2/events"
	"github.com/pedrowallacee/palpitarena-v2/feed"
	"github.com/pedrowallacee/palpitarena-v2/handlers"
	"github.com/pedrowallacee/palpitarena-v2/locks"
	api "github.com/pedrowallacee/palpitarena-v2/routes"
	"github.com/pedrowallacee/palpitarena-v2/services"
	"github.com/pedrowallacee/palpitarena-v2/storage"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "palpitarena"

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	clk := clock.New()
	store := services.NewPostgresStore(dbConn, logger)

	// WebSocket Hub и рассылка событий
	wsHub := events.NewHub(logger)
	go wsHub.Run(ctx)
	dispatcher := events.NewDispatcher(logger, wsHub)
	logger.Info("WebSocket Hub started")

	// Redis необязателен: без него блокировки живут в памяти процесса
	var locker locks.Locker = locks.NewMemoryLocker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}
		locker = locks.NewRedisLocker(rdb, redisKeyPrefix)
		dispatcher.Add(events.NewRedisPublisher(rdb, redisKeyPrefix))
		logger.Info("redis locks and event channel enabled", slog.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process locks")
	}

	// Снимки таблиц в Cloudflare R2
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		dispatcher.Add(storage.NewStandingsArchiver(uploader, logger))
		logger.Info("Cloudflare R2 standings archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	// Внешний источник результатов
	var provider feed.Provider
	if cfg.Feed.APIKey != "" {
		provider = feed.NewAPIFootballClient(feed.APIFootballConfig{
			BaseURL:  cfg.Feed.BaseURL,
			APIKey:   cfg.Feed.APIKey,
			Timeout:  cfg.Feed.Timeout,
			Retries:  cfg.Feed.Retries,
			LeagueID: cfg.Feed.LeagueID,
			Season:   cfg.Feed.Season,
		}, logger)
	} else {
		logger.Warn("FEED_API_KEY not set, rounds are recalculated from stored results only")
	}

	// Инициализация сервисов
	rules := cfg.Rules
	recalcConfig := services.DefaultRecalculationConfig()
	recalcConfig.MaxAttempts = rules.MaxAttempts
	recalcConfig.FeedTimeout = rules.FeedTimeout.Duration
	recalcConfig.RoundLockTTL = rules.RoundLockTTL.Duration
	recalcConfig.StandingsLockTTL = rules.StandingsLockTTL.Duration

	recalculationService := services.NewRecalculationService(store, provider, locker, dispatcher, clk, recalcConfig, logger)
	bracketService := services.NewBracketService(store, dispatcher, clk, nil, services.BracketConfig{
		GroupSize:       rules.GroupSize,
		GroupLabels:     rules.GroupLabels,
		ReturnLegOffset: rules.ReturnLegOffset.Duration,
	}, logger)
	predictionService := services.NewPredictionService(store, clk, logger)
	standingsService := services.NewStandingsService(store, logger)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	championshipHandler := handlers.NewChampionshipHandler(recalculationService, bracketService, standingsService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, championshipHandler, predictionHandler, webSocketHandler)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	stop()
	logger.Info("application exited")
}
