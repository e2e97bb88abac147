package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/municipal-helpdesk/internal/api/http"
	"github.com/spec-kit/municipal-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/config"
	"github.com/spec-kit/municipal-helpdesk/internal/events"
	"github.com/spec-kit/municipal-helpdesk/internal/mail"
	"github.com/spec-kit/municipal-helpdesk/internal/observability"
	"github.com/spec-kit/municipal-helpdesk/internal/persistence"
	"github.com/spec-kit/municipal-helpdesk/internal/repository"
	"github.com/spec-kit/municipal-helpdesk/internal/service"
	"github.com/spec-kit/municipal-helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	revocation := auth.NewRedisRevocationStore(redis.Client)
	dispatcher := events.NewInMemoryDispatcher(logger)

	var mailer mail.Mailer
	if cfg.Notification.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.Notification.ResendAPIKey, cfg.Notification.EmailFrom)
	} else {
		logger.Warn("RESEND_API_KEY not set, notifications will only be logged")
		mailer = mail.NewLogMailer(logger)
	}

	notifier := worker.NewNotificationWorker(worker.Config{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout(),
	}, mailer, logger, metrics)
	notifier.Start(ctx)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Revocation: revocation,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	directoryService := service.NewDirectoryService(*cfg, userRepo, logger)
	service.NewNotificationService(dispatcher, notifier, logger).RegisterHandlers()

	if cfg.Bootstrap.Enabled() {
		if err := directoryService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
			logger.Fatal("failed to bootstrap administrator", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	sessions := auth.NewSessionResolver(tokens, userRepo, revocation, cfg.Auth.CookieName, logger.Named("auth"))
	cookie := handlers.CookieSettings{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, userRepo),
		Auth:         handlers.NewAuthHandler(authService, cookie),
		Tickets:      handlers.NewTicketsHandler(ticketService),
		Users:        handlers.NewUsersHandler(directoryService),
		Pages:        handlers.NewPagesHandler(),
		Sessions:     sessions,
		Gate:         auth.NewGate(),
		LoginLimiter: httptransport.NewLoginLimiter(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger),
		Gatherer:     registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notifier.Stop(shutdownCtx); err != nil {
		logger.Warn("notification worker shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
