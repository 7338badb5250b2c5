package scheduler

import (
	"context"
	"fmt"
	"log"

	"MarketLens/internal/query"

	"github.com/robfig/cron/v3"
)

// Scheduler keeps the watchlist's cache entries warm: on a cron schedule it
// recomputes the configured (tickers, interval) entry so interactive loads
// hit a fresh table instead of a cold miss or a day-old one.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *query.Service
	Tickers  []string
	Interval query.Interval
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *query.Service, tickers []string, interval query.Interval) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Tickers:  tickers,
		Interval: interval,
		Ctx:      ctx,
	}
}

// Register registers the warm task on the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if len(s.Tickers) == 0 {
		log.Println("[INFO] empty watchlist, warm task not registered")
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.warmTask); err != nil {
		return fmt.Errorf("register warm task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// WarmNow executes the warm task immediately (for RUN_ON_START).
func (s *Scheduler) WarmNow() {
	s.warmTask()
}

func (s *Scheduler) warmTask() {
	log.Printf("[INFO] warming cache for watchlist %v @ %s", s.Tickers, s.Interval)
	if err := s.Service.Refresh(s.Ctx, s.Tickers, s.Interval); err != nil {
		log.Printf("[ERROR] warm watchlist: %v", err)
	}
}
