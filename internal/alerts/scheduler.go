package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"elite_crm_backend/internal/queue"
	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/logger"
)

// BatchEnqueuer is the producer surface the scheduler needs.
type BatchEnqueuer interface {
	EnqueueAlertBatch(ctx context.Context, taskType string, payload queue.AlertBatchPayload) (string, error)
}

// Scheduler turns cron ticks into alert batch tasks. The batch id is the
// tick's date, so several scheduler instances enqueueing the same tick
// collapse into one task at the broker.
type Scheduler struct {
	cron     *cron.Cron
	enqueuer BatchEnqueuer
	log      *logger.Logger
}

func NewScheduler(cfg config.AlertsConfig, enqueuer BatchEnqueuer, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		enqueuer: enqueuer,
		log:      log,
	}

	if _, err := s.cron.AddFunc(cfg.GetAlertsDailyCron(), func() {
		s.enqueue(queue.TaskDailyAlerts)
	}); err != nil {
		return nil, fmt.Errorf("invalid daily cron %q: %w", cfg.GetAlertsDailyCron(), err)
	}

	if _, err := s.cron.AddFunc(cfg.GetAlertsWeeklyCron(), func() {
		s.enqueue(queue.TaskWeeklyAlerts)
	}); err != nil {
		return nil, fmt.Errorf("invalid weekly cron %q: %w", cfg.GetAlertsWeeklyCron(), err)
	}

	return s, nil
}

// Run ticks until ctx is cancelled, then waits for in-flight jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("alert scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) enqueue(taskType string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := queue.AlertBatchPayload{BatchID: time.Now().Format("2006-01-02")}
	taskID, err := s.enqueuer.EnqueueAlertBatch(ctx, taskType, payload)
	if err != nil {
		s.log.Error("failed to enqueue alert batch", "task_type", taskType, "error", err.Error())
		return
	}
	s.log.JobEvent("enqueued", taskID, taskType)
}
