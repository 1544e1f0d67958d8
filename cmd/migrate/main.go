// Command migrate applies the raw_articles schema for the postgres store driver.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	infraconfig "github.com/jonesrussell/content-extraction/infrastructure/config"
	"github.com/jonesrussell/content-extraction/internal/config"
)

// defaultMigrationsPath is the relative path to the migrations directory.
const defaultMigrationsPath = "file://migrations"

var (
	cfgFile        string
	migrationsPath string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the raw_articles schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", infraconfig.GetConfigPath("config.yml"), "config file")
	root.PersistentFlags().StringVar(&migrationsPath, "path", defaultMigrationsPath, "migrations source URL")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withMigrate(func(m *migrate.Migrate) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back all migrations, or the given number of steps",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if len(args) == 0 {
					return withMigrate(func(m *migrate.Migrate) error { return m.Down() })
				}
				steps, err := strconv.Atoi(args[0])
				if err != nil || steps <= 0 {
					return fmt.Errorf("invalid steps %q", args[0])
				}
				return withMigrate(func(m *migrate.Migrate) error { return m.Steps(-steps) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withMigrate(func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Println("No migrations applied")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Printf("Version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)
	return root
}

// withMigrate opens a migrate instance for the configured database and runs fn.
func withMigrate(fn func(*migrate.Migrate) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Store.Postgres.Validate("store.postgres"); validationErr != nil {
		return validationErr
	}

	m, err := migrate.New(migrationsPath, cfg.Store.Postgres.URL())
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	err = fn(m)
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to apply")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("Migration completed successfully")
	return nil
}
