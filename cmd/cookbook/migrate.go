package main

import (
	"fmt"
	"strconv"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/migrations"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator, args []string) error {
			return m.Up(cmd.Context())
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator, args []string) error {
			return m.Down(cmd.Context())
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator, args []string) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return m.Force(version)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "files",
		Short: "List the embedded migration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := migrations.Files()
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	})

	return cmd
}

func withMigrator(fn func(cmd *cobra.Command, m *migrations.Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap("stderr")
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Database.Driver != config.DriverPostgres {
			return fmt.Errorf("migrations apply to the postgres driver only, configured driver is %q", cfg.Database.Driver)
		}

		m, err := migrations.New(cfg.GetMigrationURL(), log)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()

		return fn(cmd, m, args)
	}
}
