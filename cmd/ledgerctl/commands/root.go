package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	database "github.com/sebuszqo/FinanceLedger/db"
	"github.com/sebuszqo/FinanceLedger/internal/config"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL      string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator tooling for the finance ledger",
	Long: `ledgerctl runs maintenance tasks against the ledger database.

It reads the same environment (and .env file) as the API server. The --db flag
overrides DB_CONNECTION_STRING.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DB_CONNECTION_STRING)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// environment loads the configuration and logger shared by every command.
func environment() (*config.Config, *log.Logger) {
	cfg := config.Load()
	if dbURL != "" {
		cfg.DBConnectionString = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := log.New(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	return cfg, logger
}

func connect(ctx context.Context) (*database.DBService, *config.Config, *log.Logger, error) {
	cfg, logger := environment()
	dbService, err := database.NewDBService(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return dbService, cfg, logger, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
