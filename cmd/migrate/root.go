package main

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/aviary/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "AVIARY_DB_DSN"

func newRootCommand() *cobra.Command {
	var dsn string

	open := func() (*migrate.Migrate, error) {
		target, err := resolveDSN(dsn)
		if err != nil {
			return nil, err
		}
		return newMigrator(target)
	}

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the aviary database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database URL (default: $"+envDSN+", then the [database] config)")

	rootCmd.AddCommand(newUpCommand(open))
	rootCmd.AddCommand(newDownCommand(open))
	rootCmd.AddCommand(newVersionCommand(open))
	rootCmd.AddCommand(newForceCommand(open))

	return rootCmd
}

// resolveDSN prefers the flag, then AVIARY_DB_DSN, then the URL built from config.
func resolveDSN(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("no --dsn or %s given and config failed to load: %w", envDSN, err)
	}
	return cfg.Database.URL(), nil
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
