package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"StakePilot/internal/config"
	"StakePilot/internal/exchange"
	"StakePilot/internal/ledger"
	"StakePilot/internal/model"
	"StakePilot/internal/notifier"
	"StakePilot/internal/recorder"
	"StakePilot/internal/strategy"
	"StakePilot/internal/tracker"
)

// Service drives the betting workflow: scan markets, place the compound
// stake, poll for settlement, feed results into the ledger and check the
// target. It is the only component that talks to more than one subsystem.
type Service struct {
	cfg      *config.Config
	client   exchange.Client
	ledger   *ledger.Ledger
	tracker  *tracker.Tracker
	recorder recorder.Recorder
	notifier notifier.Notifier

	criteria strategy.Criteria
	target   decimal.Decimal
}

// New wires a Service from its dependencies. Money config values are
// converted from YAML floats to decimals here, once.
func New(cfg *config.Config, client exchange.Client, lg *ledger.Ledger, tr *tracker.Tracker, rec recorder.Recorder, nt notifier.Notifier) *Service {
	return &Service{
		cfg:      cfg,
		client:   client,
		ledger:   lg,
		tracker:  tr,
		recorder: rec,
		notifier: nt,
		criteria: strategy.Criteria{
			MinOdds:         decimal.NewFromFloat(cfg.Betting.MinOdds),
			MaxOdds:         decimal.NewFromFloat(cfg.Betting.MaxOdds),
			MinLiquidity:    decimal.NewFromFloat(cfg.Betting.MinLiquidity),
			LiquidityFactor: decimal.NewFromFloat(cfg.Betting.LiquidityFactor),
		},
		target: decimal.NewFromFloat(cfg.Betting.TargetAmount),
	}
}

// RunBettingCycle scans the market list for one backable opportunity and
// places the next compound stake on it. A no-op while a bet is in flight.
func (s *Service) RunBettingCycle(ctx context.Context) error {
	active, err := s.tracker.HasActiveBet()
	if err != nil {
		return fmt.Errorf("check active bet: %w", err)
	}
	if active {
		log.Println("[INFO] bet already in flight, skipping scan")
		return nil
	}

	stake, err := s.ledger.NextStake()
	if err != nil {
		return fmt.Errorf("compute next stake: %w", err)
	}

	markets, err := s.client.ListMarkets(s.cfg.MarketSelection.MaxMarkets, s.cfg.MarketSelection.HoursAhead)
	if err != nil {
		return fmt.Errorf("list markets: %w", err)
	}
	ranked := strategy.RankMarkets(markets, s.cfg.MarketSelection.TopMarkets)
	log.Printf("[INFO] scanning %d of %d markets, stake %s", len(ranked), len(markets), stake.StringFixed(2))

	for i := range ranked {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		book, err := s.client.MarketBook(ranked[i].ID)
		if err != nil {
			log.Printf("[WARN] market book %s: %v", ranked[i].ID, err)
			continue
		}
		opp := strategy.AnalyzeMarket(book, stake, s.criteria)
		if opp == nil {
			continue
		}
		return s.placeBet(ctx, opp, stake)
	}

	log.Println("[INFO] no backable opportunity this scan")
	return nil
}

func (s *Service) placeBet(ctx context.Context, opp *model.Opportunity, stake decimal.Decimal) error {
	betRef, err := s.client.PlaceBet(opp.MarketID, opp.SelectionID, opp.Odds, stake)
	if err != nil {
		return fmt.Errorf("place bet on %s: %w", opp.MarketID, err)
	}
	if betRef == "" {
		betRef = uuid.NewString()
	}

	bet := &model.BetDetails{
		BetRef:          betRef,
		MarketID:        opp.MarketID,
		EventID:         opp.EventID,
		EventName:       opp.EventName,
		Competition:     opp.Competition,
		SelectionID:     opp.SelectionID,
		TeamName:        opp.TeamName,
		Odds:            opp.Odds,
		Stake:           stake,
		MarketStartTime: opp.MarketStartTime,
		InPlay:          opp.InPlay,
		PlacedAt:        time.Now().UTC(),
	}

	if err := s.tracker.RecordPlacement(bet); err != nil {
		return fmt.Errorf("track placement: %w", err)
	}
	stats, err := s.ledger.RecordBetPlaced(ledger.BetPlaced{
		MarketID:    bet.MarketID,
		SelectionID: bet.SelectionID,
		EventName:   bet.EventName,
		TeamName:    bet.TeamName,
		Odds:        bet.Odds,
		Stake:       bet.Stake,
		BetRef:      bet.BetRef,
	})
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}

	log.Printf("[INFO] placed %s on %s (%s) @ %s, ref %s",
		stake.StringFixed(2), bet.TeamName, bet.EventName, bet.Odds.StringFixed(2), bet.BetRef)

	if err := s.recorder.RecordPlacement(bet, &stats); err != nil {
		log.Printf("[WARN] record placement to sqlite: %v", err)
	}
	if err := s.notifier.SendWithRetry(ctx, notifier.FormatBetPlaced(bet, &stats), 3); err != nil {
		log.Printf("[WARN] notify placement: %v", err)
	}
	return nil
}

// CheckResults polls the exchange for the outcome of the in-flight bet and,
// once settled, records the result, closes out the bet and checks the target.
// A no-op while no bet is active or the market is still running.
func (s *Service) CheckResults(ctx context.Context) error {
	bet, err := s.tracker.ActiveBet()
	if err != nil {
		return fmt.Errorf("load active bet: %w", err)
	}
	if bet == nil {
		return nil
	}

	settlement, err := s.client.CheckSettlement(bet)
	if err != nil {
		return fmt.Errorf("check settlement for %s: %w", bet.MarketID, err)
	}
	if settlement == nil || !settlement.Settled {
		log.Printf("[INFO] bet on %s not settled yet", bet.MarketID)
		return nil
	}

	stats, err := s.ledger.RecordBetResult(ledger.BetPlaced{
		MarketID:    bet.MarketID,
		SelectionID: bet.SelectionID,
		Odds:        bet.Odds,
		Stake:       bet.Stake,
	}, settlement.Won, settlement.NetProfit, settlement.NewBalance, settlement.Commission)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	if err := s.tracker.RecordSettlement(bet, settlement); err != nil {
		return fmt.Errorf("track settlement: %w", err)
	}

	if settlement.Won {
		log.Printf("[INFO] bet won: %s net profit, balance %s",
			settlement.NetProfit.StringFixed(2), stats.Balance.StringFixed(2))
	} else {
		log.Printf("[INFO] bet lost: %s gone, cycle %d begins", bet.Stake.StringFixed(2), stats.CurrentCycle)
		if n := len(stats.CycleHistory); n > 0 {
			rec := stats.CycleHistory[n-1]
			if err := s.recorder.RecordCycle(&rec); err != nil {
				log.Printf("[WARN] record cycle to sqlite: %v", err)
			}
		}
	}

	if err := s.recorder.RecordSettlement(bet, settlement, &stats); err != nil {
		log.Printf("[WARN] record settlement to sqlite: %v", err)
	}
	if err := s.notifier.SendWithRetry(ctx, notifier.FormatSettlement(bet, settlement, &stats), 3); err != nil {
		log.Printf("[WARN] notify settlement: %v", err)
	}

	if settlement.Won {
		return s.checkTarget(ctx, stats.Balance)
	}
	return nil
}

func (s *Service) checkTarget(ctx context.Context, balance decimal.Decimal) error {
	reached, err := s.ledger.CheckTargetReached(balance, s.target)
	if err != nil {
		return fmt.Errorf("check target: %w", err)
	}
	if !reached {
		return nil
	}

	stats, err := s.ledger.Stats()
	if err != nil {
		return fmt.Errorf("stats after target: %w", err)
	}
	log.Printf("[INFO] target reached: balance %s >= %s", balance.StringFixed(2), s.target.StringFixed(2))

	if n := len(stats.CycleHistory); n > 0 {
		rec := stats.CycleHistory[n-1]
		if err := s.recorder.RecordCycle(&rec); err != nil {
			log.Printf("[WARN] record cycle to sqlite: %v", err)
		}
	}
	if err := s.notifier.SendWithRetry(ctx, notifier.FormatTargetReached(&stats, s.target), 3); err != nil {
		log.Printf("[WARN] notify target: %v", err)
	}
	return nil
}

// Reset wipes all betting state back to the configured initial stake: the
// event log, the active bet and the history.
func (s *Service) Reset() (ledger.Stats, error) {
	if err := s.tracker.Reset(); err != nil {
		return ledger.Stats{}, fmt.Errorf("reset tracker: %w", err)
	}
	stats, err := s.ledger.Reset(decimal.NewFromFloat(s.cfg.Betting.InitialStake))
	if err != nil {
		return ledger.Stats{}, fmt.Errorf("reset ledger: %w", err)
	}
	log.Printf("[INFO] system reset, starting stake %s", stats.StartingStake.StringFixed(2))
	return stats, nil
}

// StatusMessage builds the operator status summary.
func (s *Service) StatusMessage() (string, error) {
	stats, err := s.ledger.Stats()
	if err != nil {
		return "", err
	}
	nextStake, err := s.ledger.NextStake()
	if err != nil {
		return "", err
	}
	active, err := s.tracker.ActiveBet()
	if err != nil {
		return "", err
	}
	return notifier.FormatStats(&stats, nextStake, active), nil
}

// HistoryMessage builds the recent-bets summary.
func (s *Service) HistoryMessage(limit int) (string, error) {
	bets, err := s.tracker.History()
	if err != nil {
		return "", err
	}
	return notifier.FormatHistory(bets, limit), nil
}

// SendDailySummary pushes the status summary to the notifier.
func (s *Service) SendDailySummary(ctx context.Context) error {
	msg, err := s.StatusMessage()
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	return s.notifier.SendWithRetry(ctx, msg, 3)
}

// HandleCommand dispatches an operator command to the matching summary or
// action and returns the reply text.
func (s *Service) HandleCommand(command string) string {
	switch {
	case strings.HasPrefix(command, "/status"):
		msg, err := s.StatusMessage()
		if err != nil {
			return fmt.Sprintf("status failed: %v", err)
		}
		return msg
	case strings.HasPrefix(command, "/history"):
		msg, err := s.HistoryMessage(10)
		if err != nil {
			return fmt.Sprintf("history failed: %v", err)
		}
		return msg
	case strings.HasPrefix(command, "/cycles"):
		stats, err := s.ledger.Stats()
		if err != nil {
			return fmt.Sprintf("cycles failed: %v", err)
		}
		return notifier.FormatCycleHistory(stats.CycleHistory)
	case strings.HasPrefix(command, "/reset"):
		stats, err := s.Reset()
		if err != nil {
			return fmt.Sprintf("reset failed: %v", err)
		}
		return fmt.Sprintf("System reset. Starting stake %s, cycle %d.",
			stats.StartingStake.StringFixed(2), stats.CurrentCycle)
	case strings.HasPrefix(command, "/help"), strings.HasPrefix(command, "/start"):
		return "Commands: /status /history /cycles /reset"
	default:
		return ""
	}
}
