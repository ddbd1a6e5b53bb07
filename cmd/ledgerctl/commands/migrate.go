package commands

import (
	"fmt"

	database "github.com/sebuszqo/FinanceLedger/db"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/spf13/cobra"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply or roll back the embedded schema migrations.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back migrations
  status  - Show the current schema version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, logger, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := database.MigrateUp(dbService.DB); err != nil {
			return err
		}
		logger.Info("migrations applied", log.FieldOperation, log.OpMigrate)
		return printVersion(cmd, dbService)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back applied migrations.

Examples:
  ledgerctl migrate down               # Roll back the last migration
  ledgerctl migrate down --steps 2     # Roll back the last two migrations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, logger, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := database.MigrateDown(dbService.DB, downSteps); err != nil {
			return err
		}
		logger.Info("migrations rolled back", log.FieldOperation, log.OpMigrate, "steps", downSteps)
		return printVersion(cmd, dbService)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()
		return printVersion(cmd, dbService)
	},
}

func printVersion(cmd *cobra.Command, dbService *database.DBService) error {
	version, dirty, err := database.MigrationVersion(dbService.DB)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"version": version, "dirty": dirty})
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
