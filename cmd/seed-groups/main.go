package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/config"
	"github.com/hirelane/recruitment-service/internal/observability"
	"github.com/hirelane/recruitment-service/internal/persistence"
	"github.com/hirelane/recruitment-service/internal/repository"
	"github.com/hirelane/recruitment-service/internal/service"
)

// seed-groups creates the built-in groups, or syncs their flags and permissions when they exist.
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

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
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

	admin := service.NewAdminService(service.AdminDependencies{
		Groups: repository.NewGroupRepository(pg.PoolHandle()),
		Logger: logger,
	})
	groups, err := admin.SeedGroups(ctx)
	if err != nil {
		logger.Fatal("failed to seed groups", zap.Error(err))
	}
	for _, g := range groups {
		logger.Info("group ready",
			zap.String("name", g.Name),
			zap.Bool("is_supervisor", g.IsSupervisor),
			zap.Bool("is_admin", g.IsAdmin),
			zap.Int("permissions", len(g.Permissions)))
	}
}
