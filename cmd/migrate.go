package cmd

import (
	"batchplant/internal/adapters/out/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed the master data",
	RunE: func(cmd *cobra.Command, _ []string) (err error) {
		cfg, logger, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer func() { err = joinCleanup(err, cleanup) }()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db, logger)

		ctx := cmd.Context()
		if err = postgres.Migrate(ctx, db); err != nil {
			return err
		}
		if err = postgres.Seed(ctx, db); err != nil {
			return err
		}
		logger.InfoContext(ctx, "schema migrated and master data seeded", "db", cfg.DB.Name)
		return nil
	},
}
