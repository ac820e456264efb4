package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"StakePilot/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stakepilot",
	Short: "Compound-betting bot with an event-sourced ledger",
	Long: `StakePilot scans exchange markets, places a compounding back bet and
derives all state by replaying its append-only event log. Run without a
subcommand to start the bot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(runCmd, statusCmd, historyCmd, resetCmd)
}

// loadConfig loads .env (if present), then the YAML config with env
// overrides, and validates it.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
