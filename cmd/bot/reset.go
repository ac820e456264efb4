package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"StakePilot/internal/ledger"
	"StakePilot/internal/storage"
	"StakePilot/internal/tracker"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all betting state and start over",
	Long:  "Discards the event log, the active bet and the history, then seeds a fresh log at the configured initial stake.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if !resetYes {
			fmt.Print("This erases ALL betting history. Type 'yes' to confirm: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		store, err := storage.NewStore(cfg.System.DataDir)
		if err != nil {
			return err
		}
		if err := tracker.NewTracker(store).Reset(); err != nil {
			return err
		}
		stats, err := ledger.NewLedger(store).Reset(decimal.NewFromFloat(cfg.Betting.InitialStake))
		if err != nil {
			return err
		}
		fmt.Printf("Reset complete. Starting stake %s, cycle %d.\n",
			stats.StartingStake.StringFixed(2), stats.CurrentCycle)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip confirmation prompt")
}
