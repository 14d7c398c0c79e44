package cmd

import (
	"fmt"

	"github.com/fenilmodi00/lotto-backend/database"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres lotto_draws schema (requires DATABASE_URL)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if appConfig.Database.URL == "" {
			return shared.NewServiceError(shared.ErrorCategoryConfiguration, "MISSING_DATABASE_URL",
				"DATABASE_URL is not set", "cmd", "migrate", false, nil)
		}
		return nil
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return database.MigrateUp(appConfig.Database.URL)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		return database.MigrateDown(appConfig.Database.URL, steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := database.GetMigrationStatus(appConfig.Database.URL)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !status.Applied {
			fmt.Fprintln(out, "No migrations have been applied yet")
			return nil
		}

		state := "clean"
		if status.Dirty {
			state = "dirty"
		}
		fmt.Fprintf(out, "Current migration version: %d (status: %s)\n", status.Version, state)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
