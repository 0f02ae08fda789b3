package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/job-board/internal/api/http"
	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/observability"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/repository"
	"github.com/spec-kit/job-board/internal/service"
	"github.com/spec-kit/job-board/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if _, err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	tx := persistence.NewTransactor(pool)
	userRepo := repository.NewUserRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(logger, cfg.Notification)
	notificationWorker := worker.StartNotificationWorker(dispatcher, notifications, cfg.Notification, logger)

	tokens := auth.NewTokenManager(cfg.Auth.SessionSecret)
	sessions := auth.NewRedisSessionStore(redis.Client)
	limiter := auth.NewRedisLimiter(redis.Client, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow(), "login", logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Sessions:   sessions,
		Tokens:     tokens,
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		UserRepo:   userRepo,
		AuditRepo:  auditRepo,
		Tx:         tx,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:    jobRepo,
		AuditRepo:  auditRepo,
		Tx:         tx,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: applicationRepo,
		JobRepo:         jobRepo,
		AuditRepo:       auditRepo,
		Tx:              tx,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	reportService := service.NewReportService(reportRepo, logger)
	profileService := service.NewProfileService(*cfg, userRepo)

	sessionMiddleware := auth.NewSessionMiddleware(tokens, sessions, userRepo, cfg.Session.CookieName, logger)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.App.Debug,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Session),
		Dashboard:      handlers.NewDashboardHandler(profileService, jobService, applicationService, reportService),
		Profile:        handlers.NewProfileHandler(profileService),
		Jobs:           handlers.NewJobsHandler(jobService, applicationService),
		Admin:          handlers.NewAdminHandler(adminService, reportService),
		Session:        sessionMiddleware,
		Metrics:        adaptor.HTTPHandler(metrics.Handler()),
		AllowedOrigins: cfg.Security.CSRFAllowedOrigins,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := notificationWorker.Stop(drainCtx); err != nil {
		logger.Warn("notification drain", zap.Error(err), zap.Int64("dropped", notificationWorker.Dropped()))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
