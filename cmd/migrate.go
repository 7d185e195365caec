package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/notes-server/database"
	"github.com/dtroode/notes-server/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.NewConfig()
				if err != nil {
					return err
				}
				if err := database.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.NewConfig()
				if err != nil {
					return err
				}
				return database.Rollback(cmd.Context(), cfg.Database.DSN)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.NewConfig()
				if err != nil {
					return err
				}
				v, err := database.Version(cmd.Context(), cfg.Database.DSN)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", v)
				return nil
			},
		},
	)

	return cmd
}
