package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/job-board/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		dir := rt.cfg.Postgres.MigrationsDir
		if migrationsDir != "" {
			dir = migrationsDir
		}
		applied, err := persistence.RunMigrations(cmd.Context(), rt.pg.PoolHandle(), dir, rt.logger)
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if len(applied) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Schema in %s is up to date\n", dir)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
}
