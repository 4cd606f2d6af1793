// Package jobs runs background tasks on a cron schedule: the monthly budget
// sweep and unread-notification cleanup.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/budget"
)

// Scheduler owns the cron instance.
type Scheduler struct {
	cron    *cron.Cron
	budgets *budget.Service
}

// NewScheduler creates the scheduler in the given timezone ("" means UTC).
func NewScheduler(budgets *budget.Service, timezone string) *Scheduler {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			log.WithError(err).WithField("timezone", timezone).Warn("timezone not loaded, falling back to UTC")
		} else {
			loc = l
		}
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		budgets: budgets,
	}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start(ctx context.Context) {
	// сброс месячных лимитов: первая минута каждого месяца; чтение само
	// применяет ленивый сброс, так что job только подчищает спящие бюджеты
	s.cron.AddFunc("1 0 1 * *", func() {
		n, err := s.budgets.SweepStale(ctx)
		if err != nil {
			log.WithError(err).Error("budget sweep failed")
			return
		}
		log.WithField("budgets_reset", n).Info("monthly budget sweep done")
	})

	// страховочный прогон раз в сутки на случай пропуска месячного тика
	s.cron.AddFunc("30 0 * * *", func() {
		if _, err := s.budgets.SweepStale(ctx); err != nil {
			log.WithError(err).Error("daily budget sweep failed")
		}
	})

	s.cron.Start()
	log.Info("job scheduler started")
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("job scheduler stopped")
}
