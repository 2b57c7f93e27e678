package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/oggyb/muzz-matching/internal/auth"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/db/migrations"
	"github.com/oggyb/muzz-matching/internal/logger"
)

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:   "matchctl",
		Short: "Operations tool for the matching service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger.InitFromConfig(cfg)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(createMigrateCmd())
	rootCmd.AddCommand(createSeedCmd())
	rootCmd.AddCommand(createTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// createMigrateCmd groups the schema migration subcommands.
func createMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				logger.Info("migrations applied")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				var err error
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
				if err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				logger.Info("migrations rolled back", "steps", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 = all)")
	migrateCmd.AddCommand(down)

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				v, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// withMigrator opens a dedicated connection with multi-statement support,
// which the migration files need.
func withMigrator(fn func(m *migrate.Migrate) error) error {
	dsn, err := mysql.ParseDSN(cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	dsn.MultiStatements = true
	dsn.ParseTime = true

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return fmt.Errorf("mysql connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)

	m, err := migrations.New(sqlDB, migrations.DialectMySQL)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer m.Close()
	return fn(m)
}

func createSeedCmd() *cobra.Command {
	var opts db.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the database and load demo users and decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.App.ENV == "production" {
				return errors.New("refusing to seed a production database (APP_ENV=production)")
			}
			database, err := db.NewDB(cfg)
			if err != nil {
				return fmt.Errorf("init db: %w", err)
			}
			if err := db.SeedTestData(database, opts, logger.L()); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			logger.Info("seeding completed")
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Members, "members", 10, "number of members to create")
	cmd.Flags().IntVar(&opts.Providers, "providers", 10, "number of providers to create")
	cmd.Flags().Int64Var(&opts.RandSeed, "rand-seed", 0, "random seed (0 = time based)")
	return cmd
}

func createTokenCmd() *cobra.Command {
	var (
		userID uint64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user (development)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if userID == 0 {
				return errors.New("--user is required")
			}
			token, err := auth.NewVerifier(cfg.Auth.JWTSecret).Issue(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&userID, "user", 0, "user id the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
