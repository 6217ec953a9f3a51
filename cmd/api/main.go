package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/megazord/team-search/internal/api/http"
	"github.com/megazord/team-search/internal/api/http/handlers"
	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/config"
	"github.com/megazord/team-search/internal/events"
	"github.com/megazord/team-search/internal/notify"
	"github.com/megazord/team-search/internal/observability"
	"github.com/megazord/team-search/internal/persistence"
	"github.com/megazord/team-search/internal/repository"
	"github.com/megazord/team-search/internal/service"
	"github.com/megazord/team-search/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	codeRepo := repository.NewConfirmationCodeRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	hackathonRepo := repository.NewHackathonRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	vacancyRepo := repository.NewVacancyRepository(pool)
	resumeRepo := repository.NewResumeRepository(pool)
	inviteRepo := repository.NewInviteTokenRepository(pool)
	statusRepo := repository.NewNotificationStatusRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLWeeks)

	mailer := notify.NewMailer(cfg.Notification, logger)
	rateLimiter := notify.NewRateLimiter(redis.Client, cfg.Notification.TelegramRatePerSec, logger)
	telegramSender, err := notify.NewTelegramSender(cfg.Notification.TelegramBotToken, rateLimiter, logger)
	if err != nil {
		logger.Fatal("failed to init telegram sender", zap.Error(err))
	}
	notifier := notify.NewNotifier(accountRepo, statusRepo, mailer, telegramSender, logger, cfg.Notification.FanoutConcurrency)

	authService := service.NewAuthService(accountRepo, codeRepo, resetRepo, tokenManager, notifier, cfg.Auth, cfg.Notification.FrontendURL, logger)
	profileService := service.NewProfileService(accountRepo)
	hackathonService := service.NewHackathonService(hackathonRepo, teamRepo, resumeRepo, inviteRepo, tokenManager, notifier, dispatcher, cfg.Notification.FrontendURL, logger)
	teamService := service.NewTeamService(teamRepo, vacancyRepo, hackathonRepo, accountRepo, inviteRepo, tokenManager, notifier, dispatcher, cfg.Notification.FrontendURL, logger)
	matchingService := service.NewMatchingService(vacancyRepo, teamRepo, hackathonRepo, resumeRepo)
	resumeService := service.NewResumeService(resumeRepo, hackathonRepo)
	notificationService := service.NewNotificationService(notifier, statusRepo, logger)

	worker.StartNotificationWorker(notificationService, dispatcher)

	authMiddleware := auth.NewMiddleware(tokenManager, accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Profiles:       handlers.NewProfilesHandler(profileService),
		Hackathons:     handlers.NewHackathonsHandler(hackathonService),
		Teams:          handlers.NewTeamsHandler(teamService, matchingService),
		Resumes:        handlers.NewResumesHandler(resumeService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
