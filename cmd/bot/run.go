package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"StakePilot/internal/exchange"
	"StakePilot/internal/ledger"
	"StakePilot/internal/notifier"
	"StakePilot/internal/recorder"
	"StakePilot/internal/scheduler"
	"StakePilot/internal/service"
	"StakePilot/internal/storage"
	"StakePilot/internal/tracker"
	"StakePilot/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func runBot(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	store, err := storage.NewStore(cfg.System.DataDir)
	if err != nil {
		return err
	}
	lg := ledger.NewLedger(store)
	tr := tracker.NewTracker(store)

	// Seed the event log on first run so the stake policy has a starting
	// stake to fall back on.
	events, err := lg.Events()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		if _, err := lg.Reset(decimal.NewFromFloat(cfg.Betting.InitialStake)); err != nil {
			return err
		}
		log.Printf("[INFO] seeded fresh event log, starting stake %.2f", cfg.Betting.InitialStake)
	}

	commission := decimal.NewFromFloat(cfg.Betting.CommissionRate)
	var client exchange.Client
	if cfg.System.DryRun {
		log.Println("[INFO] dry-run mode: using paper exchange")
		client = exchange.NewPaperClient(decimal.NewFromFloat(cfg.Betting.InitialStake), commission)
	} else {
		client = exchange.NewRESTClient(cfg.Exchange.BaseURL, cfg.Exchange.AppKey,
			cfg.Exchange.SessionToken, commission, cfg.Proxy)
	}

	var rec recorder.Recorder
	if cfg.System.SQLitePath != "" {
		r, err := recorder.NewSQLiteRecorder(cfg.System.SQLitePath)
		if err != nil {
			log.Printf("[WARN] sqlite recorder unavailable, continuing without: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = r
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	var nt notifier.Notifier = notifier.NoopNotifier{}
	var tg *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tg = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		nt = tg
	} else {
		log.Println("[WARN] Telegram not configured, notifications disabled")
	}

	svc := service.New(cfg, client, lg, tr, rec, nt)

	if tg != nil {
		go tg.StartPolling(ctx, svc.HandleCommand)
	}

	srv := web.New(cfg.System.ListenAddr, lg, tr)
	srv.Start()

	sched := scheduler.New(svc)
	if err := sched.Start(ctx, cfg.Schedule.ScanCron, cfg.Schedule.SummaryCron,
		cfg.ResultChecking.CheckIntervalSeconds); err != nil {
		return err
	}

	log.Printf("[INFO] StakePilot running on %s exchange, target %.2f",
		client.Name(), cfg.Betting.TargetAmount)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("[INFO] received %v, shutting down", sig)
	case <-ctx.Done():
	}

	cancel()
	sched.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	return nil
}
