package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"StakePilot/internal/service"
)

// Scheduler owns the cron jobs: the market scan, the settlement poll and the
// daily summary. Jobs run in cron's goroutines; the service serializes its
// own state, so overlapping ticks are safe.
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
}

// New builds a Scheduler around svc using second-granularity cron specs.
func New(svc *service.Service) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		svc:  svc,
	}
}

// Start registers the jobs and starts the cron loop. checkIntervalSeconds
// drives the settlement poll; scanSpec and summarySpec are 6-field cron
// expressions.
func (s *Scheduler) Start(ctx context.Context, scanSpec, summarySpec string, checkIntervalSeconds int) error {
	if _, err := s.cron.AddFunc(scanSpec, func() {
		if err := s.svc.RunBettingCycle(ctx); err != nil {
			log.Printf("[ERROR] betting cycle: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule scan %q: %w", scanSpec, err)
	}

	checkSpec := fmt.Sprintf("@every %ds", checkIntervalSeconds)
	if _, err := s.cron.AddFunc(checkSpec, func() {
		if err := s.svc.CheckResults(ctx); err != nil {
			log.Printf("[ERROR] result check: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule result check %q: %w", checkSpec, err)
	}

	if _, err := s.cron.AddFunc(summarySpec, func() {
		if err := s.svc.SendDailySummary(ctx); err != nil {
			log.Printf("[ERROR] daily summary: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule summary %q: %w", summarySpec, err)
	}

	s.cron.Start()
	log.Printf("[INFO] scheduler started: scan %q, settlement check %q, summary %q",
		scanSpec, checkSpec, summarySpec)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[INFO] scheduler stopped")
}
