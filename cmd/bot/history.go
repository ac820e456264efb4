package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"StakePilot/internal/storage"
	"StakePilot/internal/tracker"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List settled bets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.System.DataDir)
		if err != nil {
			return err
		}
		tr := tracker.NewTracker(store)

		bets, err := tr.History()
		if err != nil {
			return err
		}
		if len(bets) == 0 {
			fmt.Println("No settled bets yet.")
			return nil
		}
		if historyLimit > 0 && len(bets) > historyLimit {
			bets = bets[len(bets)-historyLimit:]
		}
		for _, b := range bets {
			outcome := "LOST"
			delta := "-" + b.Stake.StringFixed(2)
			if b.Settlement.Won {
				outcome = "WON"
				delta = "+" + b.Settlement.NetProfit.StringFixed(2)
			}
			fmt.Printf("%s  %-4s  %s @ %s  stake %s  %s\n",
				b.Settlement.SettledAt.Format("2006-01-02 15:04"),
				outcome, b.TeamName, b.Odds.StringFixed(2), b.Stake.StringFixed(2), delta)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "show at most n bets")
}
