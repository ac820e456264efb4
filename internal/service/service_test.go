package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"StakePilot/internal/config"
	"StakePilot/internal/exchange"
	"StakePilot/internal/ledger"
	"StakePilot/internal/model"
	"StakePilot/internal/notifier"
	"StakePilot/internal/recorder"
	"StakePilot/internal/storage"
	"StakePilot/internal/tracker"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Betting.InitialStake = 1.0
	cfg.Betting.TargetAmount = 50000
	cfg.Betting.MinOdds = 3.5
	cfg.Betting.MaxOdds = 10
	cfg.Betting.MinLiquidity = 100000
	cfg.Betting.LiquidityFactor = 1.1
	cfg.Betting.CommissionRate = 0.05
	cfg.MarketSelection.MaxMarkets = 100
	cfg.MarketSelection.TopMarkets = 10
	cfg.System.DryRun = true
	return cfg
}

func backableMarket() model.Market {
	return model.Market{
		ID:           "1.100",
		EventName:    "Home v Away",
		Status:       model.MarketOpen,
		TotalMatched: dec("500000"),
		Runners: []model.Runner{
			{
				SelectionID:     7,
				Name:            "Home",
				AvailableToBack: []model.PriceSize{{Price: dec("4.0"), Size: dec("1000")}},
				AvailableToLay:  []model.PriceSize{{Price: dec("4.05"), Size: dec("1000")}},
			},
		},
	}
}

func newTestService(t *testing.T, cfg *config.Config) (*Service, *exchange.PaperClient, *ledger.Ledger, *tracker.Tracker) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	lg := ledger.NewLedger(store)
	_, err = lg.Reset(decimal.NewFromFloat(cfg.Betting.InitialStake))
	require.NoError(t, err)

	tr := tracker.NewTracker(store)
	client := exchange.NewPaperClient(dec("100"), decimal.NewFromFloat(cfg.Betting.CommissionRate))
	client.Markets = []model.Market{backableMarket()}

	svc := New(cfg, client, lg, tr, recorder.NewNoopRecorder(), notifier.NoopNotifier{})
	return svc, client, lg, tr
}

func TestServicePlacesBetOnOpportunity(t *testing.T) {
	svc, _, lg, tr := newTestService(t, testConfig())
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))

	active, err := tr.ActiveBet()
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, "1.100", active.MarketID)
	require.Equal(t, int64(7), active.SelectionID)
	require.True(t, active.Stake.Equal(dec("1")), "first bet uses the starting stake")
	require.NotEmpty(t, active.BetRef)

	stats, err := lg.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalBets)
	require.Equal(t, 1, stats.CurrentBetInCycle)
}

func TestServiceSkipsScanWhileBetActive(t *testing.T) {
	svc, _, lg, _ := newTestService(t, testConfig())
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))
	require.NoError(t, svc.RunBettingCycle(ctx))

	stats, err := lg.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalBets, "one bet at a time")
}

func TestServiceWinCompoundsNextStake(t *testing.T) {
	svc, client, lg, tr := newTestService(t, testConfig())
	client.NextWin = true
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))
	require.NoError(t, svc.CheckResults(ctx))

	active, err := tr.ActiveBet()
	require.NoError(t, err)
	require.Nil(t, active)

	stats, err := lg.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalWins)
	// Stake 1 @ 4.0: gross 3, commission 0.15, net 2.85.
	require.True(t, stats.LastWinningProfit.Equal(dec("2.85")))

	nextStake, err := lg.NextStake()
	require.NoError(t, err)
	require.True(t, nextStake.Equal(dec("2.85")))

	history, err := tr.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.True(t, history[0].Settlement.Won)
}

func TestServiceLossEndsCycle(t *testing.T) {
	svc, client, lg, _ := newTestService(t, testConfig())
	client.NextWin = false
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))
	require.NoError(t, svc.CheckResults(ctx))

	stats, err := lg.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalLosses)
	require.Equal(t, 2, stats.CurrentCycle)
	require.Equal(t, 0, stats.CurrentBetInCycle)
	require.Len(t, stats.CycleHistory, 1)
	require.Equal(t, ledger.CycleLost, stats.CycleHistory[0].Result)

	nextStake, err := lg.NextStake()
	require.NoError(t, err)
	require.True(t, nextStake.Equal(dec("1")))
}

func TestServiceUnsettledBetStaysActive(t *testing.T) {
	svc, client, _, tr := newTestService(t, testConfig())
	client.SettleAfter = 2
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))
	require.NoError(t, svc.CheckResults(ctx))
	require.NoError(t, svc.CheckResults(ctx))

	active, err := tr.ActiveBet()
	require.NoError(t, err)
	require.NotNil(t, active, "bet stays active until the exchange settles it")
}

func TestServiceTargetReached(t *testing.T) {
	cfg := testConfig()
	cfg.Betting.TargetAmount = 100 // paper balance starts at 100; one win crosses it
	svc, client, lg, _ := newTestService(t, cfg)
	client.NextWin = true
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))
	require.NoError(t, svc.CheckResults(ctx))

	stats, err := lg.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalCycles)
	require.Len(t, stats.CycleHistory, 1)
	require.Equal(t, ledger.CycleTargetReached, stats.CycleHistory[0].Result)
	require.Equal(t, 0, stats.CurrentBetInCycle)
}

func TestServiceNoOpportunityNoBet(t *testing.T) {
	svc, client, lg, tr := newTestService(t, testConfig())
	// Thin market fails the liquidity floor.
	client.Markets[0].TotalMatched = dec("1000")
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))

	active, err := tr.ActiveBet()
	require.NoError(t, err)
	require.Nil(t, active)

	stats, err := lg.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalBets)
}

func TestServiceReset(t *testing.T) {
	svc, client, lg, tr := newTestService(t, testConfig())
	client.NextWin = false
	ctx := context.Background()

	require.NoError(t, svc.RunBettingCycle(ctx))
	require.NoError(t, svc.CheckResults(ctx))

	stats, err := svc.Reset()
	require.NoError(t, err)
	require.Equal(t, 1, stats.CurrentCycle)
	require.Equal(t, 0, stats.TotalBets)
	require.True(t, stats.StartingStake.Equal(dec("1")))

	events, err := lg.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)

	history, err := tr.History()
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestServiceHandleCommand(t *testing.T) {
	svc, _, _, _ := newTestService(t, testConfig())

	require.Contains(t, svc.HandleCommand("/status"), "Status")
	require.Contains(t, svc.HandleCommand("/history"), "No settled bets")
	require.Contains(t, svc.HandleCommand("/cycles"), "No completed cycles")
	require.Contains(t, svc.HandleCommand("/help"), "/status")
	require.Equal(t, "", svc.HandleCommand("hello"))
}
