package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	httptransport "github.com/hirelane/recruitment-service/internal/api/http"
	"github.com/hirelane/recruitment-service/internal/api/http/handlers"
	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/config"
	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/identity"
	"github.com/hirelane/recruitment-service/internal/mail"
	"github.com/hirelane/recruitment-service/internal/media"
	"github.com/hirelane/recruitment-service/internal/observability"
	"github.com/hirelane/recruitment-service/internal/persistence"
	"github.com/hirelane/recruitment-service/internal/repository"
	"github.com/hirelane/recruitment-service/internal/repository/memory"
	"github.com/hirelane/recruitment-service/internal/service"
	"github.com/hirelane/recruitment-service/internal/worker"
)

type repositories struct {
	users        repository.UserRepository
	groups       repository.GroupRepository
	persons      repository.PersonRepository
	nationalIDs  repository.NationalIDRepository
	applications repository.ApplicationRepository
	history      repository.ApplicationHistoryRepository
	lookups      repository.LookupRepository
}

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

	health := map[string]handlers.Pinger{}
	var repos repositories
	if cfg.Postgres.DSN != "" {
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
		pool := pg.PoolHandle()
		repos = repositories{
			users:        repository.NewUserRepository(pool),
			groups:       repository.NewGroupRepository(pool),
			persons:      repository.NewPersonRepository(pool),
			nationalIDs:  repository.NewNationalIDRepository(pool),
			applications: repository.NewApplicationRepository(pool),
			history:      repository.NewApplicationHistoryRepository(pool),
			lookups:      repository.NewLookupRepository(pool),
		}
		health["postgres"] = pg
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory storage")
		store := memory.NewStore()
		repos = repositories{
			users:        store.Users(),
			groups:       store.Groups(),
			persons:      store.Persons(),
			nationalIDs:  store.NationalIDs(),
			applications: store.Applications(),
			history:      store.ApplicationHistory(),
			lookups:      store.Lookups(),
		}
		health["postgres"] = nil
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		limiter     service.RateLimiter
		revoker     service.TokenRevoker
		idempotency service.IdempotencyStore
		revocations auth.RevocationList
	)
	sessionCfg := session.Config{
		Expiration:     cfg.Session.Expiration,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	}
	if redis.Available() {
		limiter, revoker, idempotency, revocations = redis, redis, redis, redis
		sessionCfg.Storage = persistence.NewSessionStorage(redis)
		health["redis"] = redis
	} else {
		logger.Warn("redis unavailable: rate limiting, token revocation and idempotency disabled, sessions kept in memory")
		health["redis"] = nil
	}
	sessions := session.New(sessionCfg)

	metrics := observability.NewMetrics(nil)
	dispatcher := events.NewInMemoryDispatcher()

	mailQueue := worker.NewMailQueue(mail.NewLogMailer(cfg.Notification.EmailFrom, logger), 2, 256, logger)
	notifications := service.NewNotificationService(dispatcher, mailQueue, metrics, logger)
	worker.StartNotificationWorker(ctx, notifications, mailQueue)

	resolver := identity.NewResolver(repos.persons, repos.nationalIDs, repos.applications, cfg.Applications.MinDaysAllowed)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Users:       repos.users,
		Groups:      repos.groups,
		NationalIDs: repos.nationalIDs,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
		Limiter:     limiter,
		Revoker:     revoker,
		Metrics:     metrics,
		Logger:      logger,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		Applications:   repos.applications,
		History:        repos.history,
		Lookups:        repos.lookups,
		Resolver:       resolver,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Applications.IdempotencyTTL,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		Users:        repos.users,
		Groups:       repos.groups,
		Persons:      repos.persons,
		NationalIDs:  repos.nationalIDs,
		Applications: repos.applications,
		Resets:       authService,
		BcryptCost:   cfg.Auth.BcryptCost,
		Logger:       logger,
	})
	if _, err := adminService.SeedGroups(ctx); err != nil {
		logger.Fatal("failed to seed groups", zap.Error(err))
	}

	var pictures media.PictureStore
	if cfg.Media.Enabled() {
		pictures = media.NewS3PictureStore(cfg.Media)
	}
	profileService := service.NewProfileService(repos.users, repos.nationalIDs, pictures)
	lookupService := service.NewLookupService(repos.lookups)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users, revocations)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, Immutable: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health),
		Accounts:       handlers.NewAccountsHandler(authService, profileService, sessions),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		Admin:          handlers.NewAdminHandler(adminService, lookupService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	mailQueue.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
