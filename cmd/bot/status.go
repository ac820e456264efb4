package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StakePilot/internal/ledger"
	"StakePilot/internal/storage"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current derived stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.System.DataDir)
		if err != nil {
			return err
		}
		lg := ledger.NewLedger(store)

		stats, err := lg.Stats()
		if err != nil {
			return err
		}
		nextStake, err := lg.NextStake()
		if err != nil {
			return err
		}

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				ledger.Stats
				NextStake string `json:"next_stake"`
			}{Stats: stats, NextStake: nextStake.String()})
		}

		fmt.Printf("Cycle:            %d (bet %d)\n", stats.CurrentCycle, stats.CurrentBetInCycle)
		fmt.Printf("Balance:          %s\n", stats.Balance.StringFixed(2))
		fmt.Printf("Highest balance:  %s\n", stats.HighestBalance.StringFixed(2))
		fmt.Printf("Next stake:       %s\n", nextStake.StringFixed(2))
		fmt.Printf("Bets:             %d (%d won, %d lost)\n", stats.TotalBets, stats.TotalWins, stats.TotalLosses)
		fmt.Printf("Money lost:       %s\n", stats.TotalMoneyLost.StringFixed(2))
		fmt.Printf("Commission paid:  %s\n", stats.TotalCommissionPaid.StringFixed(2))
		fmt.Printf("Cycles completed: %d (deepest %d)\n", stats.TotalCycles, stats.HighestCycleReached)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}
