package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/observability"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/repository"
	"github.com/spec-kit/job-board/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "jobboardctl",
	Short: "Operator tooling for the job board",
	Long: `jobboardctl runs maintenance tasks against the job board database:
schema migrations, seeding the first administrator and rewriting
legacy admin permission bags.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(migratePermissionsCmd)
}

// runtime holds the dependencies shared by every subcommand.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, pg: pg}, nil
}

func (r *runtime) Close() {
	r.pg.Close()
	_ = r.logger.Sync()
}

func (r *runtime) adminService() *service.AdminService {
	pool := r.pg.PoolHandle()
	return service.NewAdminService(*r.cfg, service.AdminDependencies{
		UserRepo:   repository.NewUserRepository(pool),
		AuditRepo:  repository.NewAuditRepository(pool),
		Tx:         persistence.NewTransactor(pool),
		Dispatcher: events.NewInMemoryDispatcher(r.logger),
		Logger:     r.logger,
	})
}
