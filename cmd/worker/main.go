// Package main - точка входа для фоновых процессов (Worker) движка
// геймификации CampusCents.
//
// Worker отвечает за периодические задачи:
// - Полный пересчёт лидербордов из статистики пользователей
// - Сброс недельных и месячных лидербордов на границах периодов
// - Вечерний поиск серий под угрозой обрыва и напоминания
//
// Инкрементальные обновления делает API-процесс на каждом событии;
// Worker - страховка от дрейфа и владелец календарных операций.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuscents/campuscents-gamification/config"

	// Application layer
	"github.com/campuscents/campuscents-gamification/internal/application/eventhandler"

	// Domain layer
	"github.com/campuscents/campuscents-gamification/internal/domain/leaderboard"
	"github.com/campuscents/campuscents-gamification/internal/domain/notification"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"

	// Infrastructure layer
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/external/push"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/messaging"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/persistence/postgres"
	rediscache "github.com/campuscents/campuscents-gamification/internal/infrastructure/persistence/redis"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/scheduler"
	"github.com/campuscents/campuscents-gamification/internal/infrastructure/scheduler/jobs"

	// Packages
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// streakRiskCron запускает вечерний скан в 18:00: достаточно поздно,
// чтобы не беспокоить тех, кто ещё успеет открыть приложение сам, и
// достаточно рано, чтобы напоминание имело смысл.
const streakRiskCron = "0 18 * * *"

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
	log.Info("starting CampusCents gamification worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled (SCHEDULER_ENABLED=false), nothing to do")
	}

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

	// Worker также должен иметь актуальную схему.
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache       *rediscache.Cache
		leaderboardCache leaderboard.Cache
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
			log.Warn("failed to connect to Redis, cache invalidation disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			leaderboardCache = rediscache.NewLeaderboardCache(redisCache)
			log.Info("Redis connection established", "addr", redisCfg.Addr())
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. РЕПОЗИТОРИИ И ДОМЕННЫЕ КОМПОНЕНТЫ
	// ─────────────────────────────────────────────────────────────────────────
	statsRepo := postgres.NewStatsRepository(dbConn)
	leaderboardRepo := postgres.NewLeaderboardRepository(dbConn)
	ranker := leaderboard.NewRanker(leaderboardRepo, leaderboardCache, logger.Default())

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ЛОКАЛЬНЫЙ EVENT BUS И ДОСТАВКА НАПОМИНАНИЙ
	//
	// Worker замыкает at-risk события на себя: свой bus, свой dispatcher,
	// свой push-клиент. Так напоминание уходит ровно один раз, независимо
	// от количества API-инстансов.
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	busConfig.AsyncMode = true
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	var sender notification.Sender
	if cfg.Notifier.Disabled || cfg.Notifier.BaseURL == "" {
		sender = push.NewNoopSender(log)
		log.Info("push delivery disabled, reminders are logged only")
	} else {
		pushCfg := push.DefaultClientConfig(cfg.Notifier.BaseURL, cfg.Notifier.APIKey)
		pushCfg.Timeout = cfg.Notifier.RequestTimeout
		pushCfg.Logger = log
		sender = push.NewClient(pushCfg)
	}

	dispatcher := messaging.NewDispatcher(messaging.DispatcherConfig{
		EventBus:            eventBus,
		RetryConfig:         messaging.DefaultRetryConfig(),
		DeadLetterQueueSize: 256,
		Logger:              log,
	})
	dispatcher.Use(messaging.RecoveryMiddleware(log))

	atRiskHandler := eventhandler.NewOnStreakAtRiskHandler(sender, log)
	if err := dispatcher.Register(shared.EventStreakAtRisk, "on_streak_at_risk", atRiskHandler.Handle); err != nil {
		return fmt.Errorf("failed to register at-risk handler: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() {
		log.Info("stopping event dispatcher...")
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. РЕГИСТРАЦИЯ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	schedConfig := scheduler.DefaultSchedulerConfig()
	schedConfig.Logger = log
	sched := scheduler.NewScheduler(schedConfig)

	rebuildJob := jobs.NewRebuildLeaderboardsJob(
		statsRepo, ranker, log, jobs.DefaultRebuildLeaderboardsConfig())
	if err := sched.Register(rebuildJob,
		scheduler.NewIntervalSchedule(cfg.Scheduler.LeaderboardRebuildInterval)); err != nil {
		return fmt.Errorf("failed to register rebuild job: %w", err)
	}

	riskConfig := jobs.DefaultStreakRiskConfig()
	riskConfig.MinStreak = cfg.Engine.MinStreakForBreakNotice
	riskJob := jobs.NewStreakRiskScanJob(statsRepo, eventBus, log, riskConfig)
	riskSchedule, err := scheduler.ParseCronExpression(streakRiskCron)
	if err != nil {
		return fmt.Errorf("invalid streak risk cron: %w", err)
	}
	if err := sched.Register(riskJob, riskSchedule); err != nil {
		return fmt.Errorf("failed to register streak risk job: %w", err)
	}

	// Сброс периодов проверяется ежечасно; сама задача решает, наступила
	// ли граница недели или месяца.
	resetJob := jobs.NewResetPeriodsJob(leaderboardRepo, leaderboardCache, time.UTC, log)
	if err := sched.Register(resetJob, scheduler.NewIntervalSchedule(time.Hour)); err != nil {
		return fmt.Errorf("failed to register period reset job: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ЗАПУСК SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	for _, job := range sched.ListJobs() {
		log.Info("job registered", "name", job.Name, "schedule", job.Schedule)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("CampusCents gamification worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	// Scheduler, dispatcher, bus и соединения закрываются через defer.
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug || cfg.App.LogLevel == "debug" {
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
