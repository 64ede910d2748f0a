package main

import (
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the SQL migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, closer, err := logger.New(cfg.LogConfig)
			if err != nil {
				return err
			}
			defer closer.Close()
			return migrate.RunMigrations(postgres.MustInitDB(cfg), cfg.PaymentsDB.MigrationsPath, log)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the given number of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, closer, err := logger.New(cfg.LogConfig)
			if err != nil {
				return err
			}
			defer closer.Close()
			return migrate.RollbackMigrations(postgres.MustInitDB(cfg), cfg.PaymentsDB.MigrationsPath, steps, log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
