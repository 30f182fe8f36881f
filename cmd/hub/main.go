// Package main is the entry point for the Dojo Community Hub: the
// scheduling, attendance and progression backend for a martial arts
// school that trains in several cities.
//
// The layout follows Clean Architecture and DDD:
//   - Domain: schedule resolution, roll calls, belts and milestones
//   - Application: commands, queries and event handlers
//   - Infrastructure: PostgreSQL, Redis, event bus, scheduler
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dojo-hub/dojo-community-hub/config"

	"github.com/dojo-hub/dojo-community-hub/internal/application/command"
	"github.com/dojo-hub/dojo-community-hub/internal/application/eventhandler"
	"github.com/dojo-hub/dojo-community-hub/internal/application/query"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"

	"github.com/dojo-hub/dojo-community-hub/internal/infrastructure/messaging"
	"github.com/dojo-hub/dojo-community-hub/internal/infrastructure/persistence/postgres"
	rediscache "github.com/dojo-hub/dojo-community-hub/internal/infrastructure/persistence/redis"
	"github.com/dojo-hub/dojo-community-hub/internal/infrastructure/scheduler"
	"github.com/dojo-hub/dojo-community-hub/internal/infrastructure/scheduler/jobs"
	"github.com/dojo-hub/dojo-community-hub/internal/infrastructure/service"

	"github.com/dojo-hub/dojo-community-hub/pkg/logger"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

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
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Dojo Community Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.School.Timezone,
	)

	// All dates and clock times in the system are interpreted on the
	// school's wall clock.
	timeutil.SetLocation(cfg.School.Location)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
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
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional occurrence cache)
	// ─────────────────────────────────────────────────────────────────────────
	var occurrenceCache schedule.Cache
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		cache, err := rediscache.NewCache(rediscache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, occurrence caching disabled", "error", err)
		} else {
			defer cache.Close()
			occurrenceCache = rediscache.NewScheduleCache(cache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	cityRepo := postgres.NewCityRepository(dbConn)
	scheduleRepo := postgres.NewScheduleRepository(dbConn)
	attendanceRepo := postgres.NewAttendanceRepository(dbConn)
	studentRepo := postgres.NewStudentRepository(dbConn)
	markRepo := postgres.NewMarkRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	resolver := schedule.NewResolver()

	engine, err := buildProgressionEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to build progression engine: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")
	idgen := service.NewUUIDGenerator()

	mutator := command.NewScheduleMutator(scheduleRepo, occurrenceCache, idgen, eventBus)
	marker := command.NewAttendanceMarker(scheduleRepo, resolver, attendanceRepo, studentRepo, studentRepo, engine, eventBus)
	promoter := command.NewBeltPromoter(studentRepo, markRepo, engine, eventBus)

	calendarQuery := query.NewCalendarQuery(scheduleRepo, occurrenceCache, resolver)
	nextClassQuery := query.NewNextClassQuery(calendarQuery)

	// TODO: expose the command and query handlers through an admin
	// transport; until then they are driven by the scheduler and tests.
	_ = mutator
	_ = marker
	_ = promoter
	_ = nextClassQuery

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")
	notifyLog := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Observability.LogLevel),
	})
	notifier := service.NewConsoleNotifier(notifyLog)

	scheduleChanged := eventhandler.NewOnScheduleChangedHandler(notifier, log)
	for _, eventType := range []shared.EventType{
		shared.EventClassAdded,
		shared.EventClassUpdated,
		shared.EventClassRemoved,
		shared.EventDayCancelled,
		shared.EventDayRestored,
	} {
		if err := eventBus.Subscribe(eventType, scheduleChanged.Handle); err != nil {
			return fmt.Errorf("failed to subscribe schedule handler: %w", err)
		}
	}

	achievementUnlocked := eventhandler.NewOnAchievementUnlockedHandler(studentRepo, engine, notifier, log)
	if err := eventBus.Subscribe(shared.EventAchievementUnlocked, achievementUnlocked.Handle); err != nil {
		return fmt.Errorf("failed to subscribe achievement handler: %w", err)
	}

	beltPromoted := eventhandler.NewOnBeltPromotedHandler(studentRepo, notifier, log)
	if err := eventBus.Subscribe(shared.EventBeltPromoted, beltPromoted.Handle); err != nil {
		return fmt.Errorf("failed to subscribe promotion handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var jobScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("initializing scheduler...")
		jobScheduler = scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:   log,
			Timezone: cfg.School.Location,
		})

		digestConfig := jobs.DefaultDailyDigestConfig()
		digestConfig.Concurrency = cfg.Scheduler.DigestConcurrency
		digestConfig.Timeout = cfg.Scheduler.JobTimeout
		digestJob := jobs.NewDailyDigestJob(cityRepo, calendarQuery, notifier, log, digestConfig)

		digestCron := fmt.Sprintf("%d %d * * *", cfg.Scheduler.DailyDigestMinute, cfg.Scheduler.DailyDigestHour)
		digestSchedule, err := scheduler.ParseCronExpression(digestCron)
		if err != nil {
			return fmt.Errorf("invalid digest schedule: %w", err)
		}
		if err := jobScheduler.Register(digestJob, digestSchedule); err != nil {
			return fmt.Errorf("failed to register digest job: %w", err)
		}

		if err := jobScheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Dojo Community Hub is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	if jobScheduler != nil && jobScheduler.IsRunning() {
		log.Info("stopping scheduler...")
		if err := jobScheduler.Stop(); err != nil {
			log.Error("failed to stop scheduler gracefully", "error", err)
		}
	}

	// Event bus and database close via defer.
	log.Info("shutdown completed")
	return nil
}

// buildProgressionEngine builds the belt catalog and milestone rules,
// honouring a BELT_ORDER override.
func buildProgressionEngine(cfg *config.Config) (*progression.Engine, error) {
	if len(cfg.School.BeltOrder) == 0 {
		return progression.NewDefaultEngine(), nil
	}
	belts, err := progression.NewBeltCatalog(cfg.School.BeltOrder)
	if err != nil {
		return nil, err
	}
	return progression.NewEngine(belts, progression.DefaultMilestones(belts)), nil
}

// setupLogger configures structured logging per the observability
// settings.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
