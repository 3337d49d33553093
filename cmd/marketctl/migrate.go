package main

import (
	"errors"

	"github.com/ErlanBelekov/autos-marketplace/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var errMissingDatabaseURL = errors.New("DATABASE_URL is not set (or pass --database-url)")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all tables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to drop all tables without --yes")
			}
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().Bool("yes", false, "confirm dropping all tables")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *postgres.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *postgres.Migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*postgres.Migrator) error) error {
	url, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	m, err := postgres.NewMigrator(url)
	if err != nil {
		return err
	}
	return errors.Join(fn(m), m.Close())
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		cmd.Println("No migrations applied")
		return nil
	}
	cmd.Printf("Schema version %d (dirty=%t)\n", v, dirty)
	return nil
}
