package main

import (
	"github.com/shenikar/emergency_dispatch/internal/repository"
	"github.com/shenikar/emergency_dispatch/internal/seed"
	"github.com/shenikar/emergency_dispatch/pkg/postgres"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference vehicles and hospitals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		if err := requireDatabase(cfg); err != nil {
			return err
		}
		if err := runMigrations(cfg.DatabaseURL, log); err != nil {
			return err
		}

		ctx := cmd.Context()
		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return err
		}
		defer dbpool.Close()

		inserted, err := repository.Seed(ctx, dbpool, seed.Vehicles(), seed.Hospitals())
		if err != nil {
			return err
		}
		log.WithField("inserted", inserted).Info("Reference data seeded")
		return nil
	},
}
