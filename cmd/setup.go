package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	if err := shared.ApplyEnv(config); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database.Path, config.Database.BusyTimeout)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.Path, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, applied)
}

// SetupStatus lists migrations that are not applied to the configured database.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	return r.withDatabase(func(db *sql.DB) error {
		pending, err := shared.PendingMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to check migrations: %w", err)
		}

		if len(pending) == 0 {
			return r.writePlain("✓ Database is up to date\n")
		}
		r.writePlainHeader(fmt.Sprintf("%d pending migrations", len(pending)))
		for _, m := range pending {
			r.writePlain("%04d  %s\n", m.Version, m.Name)
		}
		return nil
	})
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	return r.withDatabase(func(db *sql.DB) error {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
		return r.writePlain("✓ Rolled back the latest migration\n")
	})
}

// withDatabase runs fn against the runner's database without applying migrations.
func (r *Runner) withDatabase(fn func(db *sql.DB) error) error {
	if r.db != nil {
		return fn(r.db)
	}

	db, err := shared.OpenDatabase(r.config.Database.Path, r.config.Database.BusyTimeout)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return fn(db)
}
