package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StakePilot/internal/ledger"
	"StakePilot/internal/model"
)

// SQLiteRecorder persists betting history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while
	// the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bets (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			bet_ref       TEXT,
			market_id     TEXT NOT NULL,
			event_name    TEXT,
			competition   TEXT,
			selection_id  INTEGER,
			team_name     TEXT,
			odds          REAL,
			stake         REAL,
			in_play       INTEGER,
			cycle_number  INTEGER,
			bet_in_cycle  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bets_ts ON bets(timestamp)`,

		`CREATE TABLE IF NOT EXISTS settlements (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			bet_ref       TEXT,
			market_id     TEXT NOT NULL,
			won           INTEGER NOT NULL,
			stake         REAL,
			odds          REAL,
			gross_profit  REAL,
			commission    REAL,
			net_profit    REAL,
			new_balance   REAL,
			total_wins    INTEGER,
			total_losses  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_ts ON settlements(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			cycle_number  INTEGER NOT NULL,
			bets_in_cycle INTEGER,
			started_at    INTEGER,
			ended_at      INTEGER,
			final_stake   REAL,
			final_balance REAL,
			result        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPlacement(bet *model.BetDetails, stats *ledger.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO bets
		(timestamp, bet_ref, market_id, event_name, competition, selection_id,
		 team_name, odds, stake, in_play, cycle_number, bet_in_cycle)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), bet.BetRef, bet.MarketID, bet.EventName, bet.Competition,
		bet.SelectionID, bet.TeamName,
		bet.Odds.InexactFloat64(), bet.Stake.InexactFloat64(),
		boolToInt(bet.InPlay), stats.CurrentCycle, stats.CurrentBetInCycle,
	)
	return err
}

func (r *SQLiteRecorder) RecordSettlement(bet *model.BetDetails, s *model.Settlement, stats *ledger.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO settlements
		(timestamp, bet_ref, market_id, won, stake, odds,
		 gross_profit, commission, net_profit, new_balance, total_wins, total_losses)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), bet.BetRef, bet.MarketID, boolToInt(s.Won),
		bet.Stake.InexactFloat64(), bet.Odds.InexactFloat64(),
		s.GrossProfit.InexactFloat64(), s.Commission.InexactFloat64(),
		s.NetProfit.InexactFloat64(), s.NewBalance.InexactFloat64(),
		stats.TotalWins, stats.TotalLosses,
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(rec *ledger.CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(timestamp, cycle_number, bets_in_cycle, started_at, ended_at,
		 final_stake, final_balance, result)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.CycleNumber, rec.BetsInCycle,
		rec.StartTime.Unix(), rec.EndTime.Unix(),
		rec.FinalStake.InexactFloat64(), rec.FinalBalance.InexactFloat64(),
		rec.Result,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
