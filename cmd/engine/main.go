// Package main - точка входа для API-процесса движка геймификации
// CampusCents.
//
// Движок превращает финансовую дисциплину студента в игру: серии
// бережливых дней, награды, рубежи и лидерборды. Этот процесс принимает
// события активности по HTTP, прогоняет их через конвейер движка и
// отдаёт готовые выдачи (лидерборд, профиль, праздники).
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Event Handlers)
// - Infrastructure: реализация репозиториев, внешние API
// - Interface: HTTP endpoints
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

	"github.com/campuscents/campuscents-gamification/config"

	// Application layer
	"github.com/campuscents/campuscents-gamification/internal/application/command"
	"github.com/campuscents/campuscents-gamification/internal/application/eventhandler"
	"github.com/campuscents/campuscents-gamification/internal/application/query"

	// Domain layer
	"github.com/campuscents/campuscents-gamification/internal/domain/badge"
	"github.com/campuscents/campuscents-gamification/internal/domain/celebration"
	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/internal/domain/notification"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/streak"

	// Infrastructure layer
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/external/feed"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/external/push"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/messaging"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/persistence/postgres"
	rediscache "github.com/campuscents/campuscents-gamification/internal/infrastructure/persistence/redis"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/campuscents/campuscents-gamification/internal/interface/http"
	"github.com/campuscents/campuscents-gamification/internal/interface/http/handlers"

	// Packages
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	appLog := setupAppLogger(cfg)
	log.Info("starting CampusCents gamification engine",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. МИГРАЦИИ И КАТАЛОГ НАГРАД
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// Репозитории.
	statsRepo := postgres.NewStatsRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	achievementRepo := postgres.NewAchievementRepository(dbConn)
	leaderboardRepo := postgres.NewLeaderboardRepository(dbConn)

	// Каталог наград досеивается на каждом старте: новые определения
	// попадают в базу, существующие не трогаются.
	if err := badgeRepo.SeedDefinitions(ctx, badge.DefaultCatalog()); err != nil {
		return fmt.Errorf("failed to seed badge catalog: %w", err)
	}
	log.Info("badge catalog seeded", "definitions", len(badge.DefaultCatalog()))

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache       *rediscache.Cache
		leaderboardCache leaderboard.Cache
		celebrationQueue celebration.Queue
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := rediscache.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = rediscache.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to in-memory mode", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			leaderboardCache = rediscache.NewLeaderboardCache(redisCache)
			celebrationQueue = rediscache.NewCelebrationQueue(redisCache)
			log.Info("Redis connection established", "addr", redisCfg.Addr())
		}
	}

	if celebrationQueue == nil {
		// Без Redis праздники живут в памяти процесса: нормально для
		// разработки, в production очередь должна переживать рестарт.
		celebrationQueue = celebration.NewMemoryQueue()
		log.Warn("using in-memory celebration queue, pending celebrations do not survive restarts")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")

	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	busConfig.AsyncMode = true
	busConfig.WorkerPoolSize = cfg.Engine.WorkerPoolSize

	var eventBus shared.EventBus
	if redisCache != nil {
		hostname, _ := os.Hostname()
		redisBus, busErr := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewCacheRedisClient(redisCache),
			InstanceID:     hostname,
			LocalBusConfig: busConfig,
			Logger:         log,
		})
		if busErr != nil {
			return fmt.Errorf("failed to create event bus: %w", busErr)
		}
		defer redisBus.Close()
		eventBus = redisBus
	} else {
		memBus := messaging.NewInMemoryEventBus(busConfig)
		defer memBus.Close()
		eventBus = memBus
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ВНЕШНИЕ КЛИЕНТЫ (push-шлюз, лента)
	// ─────────────────────────────────────────────────────────────────────────
	var sender notification.Sender
	var pushClient *push.Client
	if cfg.Notifier.Disabled || cfg.Notifier.BaseURL == "" {
		sender = push.NewNoopSender(log)
		log.Info("push delivery disabled, notifications are logged only")
	} else {
		pushCfg := push.DefaultClientConfig(cfg.Notifier.BaseURL, cfg.Notifier.APIKey)
		pushCfg.Timeout = cfg.Notifier.RequestTimeout
		pushCfg.Logger = log
		pushClient = push.NewClient(pushCfg)
		sender = pushClient
	}

	var feedPublisher eventhandler.FeedPublisher
	if !cfg.Feed.Disabled && cfg.Feed.BaseURL != "" {
		feedCfg := feed.DefaultClientConfig(cfg.Feed.BaseURL, cfg.Feed.APIKey)
		feedCfg.Timeout = cfg.Feed.RequestTimeout
		feedCfg.Logger = log
		feedPublisher = feed.NewClient(feedCfg)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ДОМЕННЫЕ КОМПОНЕНТЫ И КОНВЕЙЕР
	// ─────────────────────────────────────────────────────────────────────────
	tracker := streak.NewTracker(cfg.Engine.MinStreakForBreakNotice)
	badgeEngine := badge.NewEngine(badgeRepo, achievementRepo, appLog)
	ranker := leaderboard.NewRanker(leaderboardRepo, leaderboardCache, appLog)

	pipeline := command.NewPipeline(
		statsRepo,
		tracker,
		badgeEngine,
		ranker,
		celebrationQueue,
		achievementRepo,
		eventBus,
		appLog,
	)

	// Write side.
	processTransactionCmd := command.NewProcessTransactionHandler(pipeline)
	completeGoalCmd := command.NewCompleteGoalHandler(pipeline)
	completeHustleCmd := command.NewCompleteHustleHandler(pipeline)
	recordLoginCmd := command.NewRecordLoginHandler(pipeline, celebrationQueue)
	registerUserCmd := command.NewRegisterUserHandler(statsRepo)
	shareAchievementCmd := command.NewShareAchievementHandler(pipeline, achievementRepo)
	drainCelebrationsCmd := command.NewDrainCelebrationsHandler(celebrationQueue)

	// Read side.
	leaderboardQuery := query.NewGetLeaderboardHandler(
		leaderboardRepo, leaderboardCache, cfg.Engine.LeaderboardCacheTTL, appLog)
	profileQuery := query.NewGetUserProfileHandler(
		statsRepo, badgeRepo, achievementRepo, celebrationQueue, appLog)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	dispatcher := messaging.NewDispatcher(messaging.DispatcherConfig{
		EventBus:            eventBus,
		RetryConfig:         messaging.DefaultRetryConfig(),
		DeadLetterQueueSize: 256,
		Logger:              log,
	})
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	badgeEarnedHandler := eventhandler.NewOnBadgeEarnedHandler(sender, feedPublisher, log)
	levelUpHandler := eventhandler.NewOnLevelUpHandler(sender, log)
	milestoneHandler := eventhandler.NewOnMilestoneReachedHandler(sender, feedPublisher, log)
	streakBrokenHandler := eventhandler.NewOnStreakBrokenHandler(sender, log)
	streakAtRiskHandler := eventhandler.NewOnStreakAtRiskHandler(sender, log)

	registrations := []struct {
		eventType shared.EventType
		name      string
		handler   shared.EventHandler
	}{
		{shared.EventBadgeEarned, "on_badge_earned", badgeEarnedHandler.Handle},
		{shared.EventLevelUp, "on_level_up", levelUpHandler.Handle},
		{shared.EventMilestoneReached, "on_milestone_reached", milestoneHandler.Handle},
		{shared.EventStreakBroken, "on_streak_broken", streakBrokenHandler.Handle},
		{shared.EventStreakAtRisk, "on_streak_at_risk", streakAtRiskHandler.Handle},
	}
	for _, reg := range registrations {
		if err := dispatcher.Register(reg.eventType, reg.name, reg.handler); err != nil {
			return fmt.Errorf("failed to register handler %s: %w", reg.name, err)
		}
	}

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() {
		log.Info("stopping event dispatcher...")
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if pushClient != nil {
		healthChecker.AddCheck("push_gateway", handlers.NewGatewayCheck("push", pushClient))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	rebuildJob := jobs.NewRebuildLeaderboardsJob(
		statsRepo, ranker, log, jobs.DefaultRebuildLeaderboardsConfig())

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.AdminAPIKeyHash = cfg.HTTP.AdminAPIKeyHash

	httpDeps := httpserver.Dependencies{
		ProcessTransactionHandler: processTransactionCmd,
		CompleteGoalHandler:       completeGoalCmd,
		CompleteHustleHandler:     completeHustleCmd,
		RecordLoginHandler:        recordLoginCmd,
		RegisterUserHandler:       registerUserCmd,
		ShareAchievementHandler:   shareAchievementCmd,
		DrainCelebrationsHandler:  drainCelebrationsCmd,
		GetLeaderboardHandler:     leaderboardQuery,
		GetUserProfileHandler:     profileQuery,
		RebuildLeaderboards:       rebuildJob.Run,
		Logger:                    appLog,
		HealthChecker:             healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("CampusCents gamification engine is running",
		"http_address", httpServer.Address(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	// Dispatcher, event bus и соединения закрываются через defer.
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование инфраструктуры.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slogLevel(cfg.App.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// setupAppLogger настраивает логгер доменного и application слоёв.
func setupAppLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = appLevel(cfg.App.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func appLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
