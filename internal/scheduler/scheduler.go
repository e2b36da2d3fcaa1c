package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"PartWatch/internal/history"
	"PartWatch/internal/notifier"
	"PartWatch/internal/registry"
	"PartWatch/internal/report"
	"PartWatch/internal/updater"

	"github.com/robfig/cron/v3"
)

// Scheduler drives watch mode: recurring refresh runs on a cron
// expression, with optional Telegram reporting and commands.
type Scheduler struct {
	Cron     *cron.Cron
	Updater  *updater.Updater
	Registry *registry.Registry
	Store    *history.Store
	Notifier *notifier.TelegramNotifier
	Ctx      context.Context

	runMu sync.Mutex
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context, upd *updater.Updater, reg *registry.Registry, store *history.Store, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Updater:  upd,
		Registry: reg,
		Store:    store,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// Register schedules the refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
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

// RunRefreshNow executes the refresh task immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

// refreshTask runs one refresh. The cron tick, RUN_ON_START and the
// /update command can all fire it, so runs are serialized.
func (s *Scheduler) refreshTask() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log.Println("[INFO] running scheduled refresh")
	result, err := s.Updater.Run()
	if err != nil {
		log.Printf("[ERROR] refresh: %v", err)
		s.trySend(fmt.Sprintf("❌ Refresh failed to persist: %v", err))
		return
	}
	s.trySend(notifier.FormatRunReport(result, s.productStatuses()))
}

// productStatuses builds the per-product lowest-price summary used by
// both the refresh report and the /status command.
func (s *Scheduler) productStatuses() []notifier.ProductStatus {
	var statuses []notifier.ProductStatus
	for _, p := range s.Registry.Products() {
		rec, ok := s.Store.MinLatest(p.ID)
		if !ok {
			continue
		}
		st := notifier.ProductStatus{
			Name:     p.Name,
			Price:    rec.Price,
			Currency: rec.Currency,
			Retailer: rec.Retailer,
		}
		if pct, err := report.PercentChange(s.Store.All(), p.ID); err == nil {
			st.Change = pct
			st.HasChange = true
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// HandleCommand processes a user command received over Telegram and
// returns the reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/update":
		s.refreshTask()
		return ""
	case "/status":
		return notifier.FormatStatus(s.productStatuses())
	default:
		return "Available commands:\n• /update — refresh all prices now\n• /status — current lowest prices"
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
