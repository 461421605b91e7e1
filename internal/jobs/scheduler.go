// Package jobs - фоновые задачи по расписанию (cron)
package jobs

import (
	"casebox_backend/internal/service"
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type Scheduler struct {
	cron      *cron.Cron
	reconcile service.ReconcileService
	schedule  string
}

// NewScheduler - планировщик сверки балансов с журналом
func NewScheduler(reconcile service.ReconcileService, schedule string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		reconcile: reconcile,
		schedule:  schedule,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Debug("[CRON] reconciliation")
		if _, err := s.reconcile.Run(ctx); err != nil {
			log.WithError(err).Error("[CRON] reconciliation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reconciliation %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("scheduler started")
	return nil
}

// Stop ждёт завершения запущенных задач
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}
