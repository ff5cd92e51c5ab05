// Package alerts delivers scheduled proactive WhatsApp alerts: daily anomaly
// scans and a Monday dashboard digest for every active client.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"

	"elite_crm_backend/internal/analysis"
	"elite_crm_backend/internal/events"
	"elite_crm_backend/internal/intent"
	"elite_crm_backend/internal/queue"
	"elite_crm_backend/internal/whatsapp"
	"elite_crm_backend/platform/logger"
)

const (
	batchClientLimit = 100
	anomalyScanDays  = 7

	AlertTypeAnomaly       = "anomaly"
	AlertTypeWeeklySummary = "weekly_summary"
)

// Service runs alert batches. One batch is serialized across worker
// instances by a database lease; within a batch, per-client failures are
// counted and never abort the run.
type Service struct {
	repo    *Repository
	ml      *analysis.MLClient
	sender  whatsapp.Sender
	bus     events.Bus
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewService(repo *Repository, ml *analysis.MLClient, sender whatsapp.Sender, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		ml:     ml,
		sender: sender,
		bus:    bus,
		// One client every 500ms keeps the gateway and ML service calm.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		log:     log,
	}
}

// Register mounts the batch handlers on the worker.
func (s *Service) Register(w *queue.Worker) {
	w.HandleFunc(queue.TaskDailyAlerts, s.HandleDailyAlerts)
	w.HandleFunc(queue.TaskWeeklyAlerts, s.HandleWeeklyAlerts)
}

// HandleDailyAlerts scans every active client for anomalies and alerts only
// those with findings.
func (s *Service) HandleDailyAlerts(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseAlertBatchPayload(task)
	if err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	return s.runBatch(ctx, payload.BatchID, leaseDailyAlerts, s.dailyAlert)
}

// HandleWeeklyAlerts sends the dashboard digest to every active client.
func (s *Service) HandleWeeklyAlerts(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseAlertBatchPayload(task)
	if err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	return s.runBatch(ctx, payload.BatchID, leaseWeeklyAlerts, s.weeklyAlert)
}

func (s *Service) runBatch(ctx context.Context, batchID string, leaseKey int64, perClient func(context.Context, AlertClient) (bool, error)) error {
	if s.ml == nil {
		s.log.Info("alert batch skipped, analytics service not configured", "batch_id", batchID)
		return nil
	}

	release, acquired, err := s.repo.AcquireLease(ctx, leaseKey)
	if err != nil {
		return fmt.Errorf("acquire batch lease: %w", err)
	}
	if !acquired {
		s.log.Info("alert batch skipped, lease held elsewhere", "batch_id", batchID)
		return nil
	}
	defer release()

	clients, err := s.repo.ActiveClients(ctx, batchClientLimit)
	if err != nil {
		return fmt.Errorf("list active clients: %w", err)
	}

	s.log.Info("alert batch started", "batch_id", batchID, "clients", len(clients))

	var sent, failed int
	for _, client := range clients {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		delivered, err := perClient(ctx, client)
		if err != nil {
			failed++
			s.log.Warn("alert failed for client", "client_id", client.ID, "error", err.Error())
			continue
		}
		if delivered {
			sent++
		}
	}

	s.log.Info("alert batch finished", "batch_id", batchID, "sent", sent, "failed", failed)
	return nil
}

func (s *Service) dailyAlert(ctx context.Context, client AlertClient) (bool, error) {
	raw, err := s.ml.Analyze(ctx, analysis.AnalyzeRequest{
		Intent:   intent.AnomalyDetection,
		ClientID: client.ID.String(),
		Params:   intent.Parameters{Days: anomalyScanDays},
	})
	if err != nil {
		return false, err
	}

	message, found := analysis.FormatAnomalyAlert(raw, client.Name)
	if !found {
		return false, nil
	}

	return true, s.deliver(ctx, client, AlertTypeAnomaly, message)
}

func (s *Service) weeklyAlert(ctx context.Context, client AlertClient) (bool, error) {
	raw, err := s.ml.Analyze(ctx, analysis.AnalyzeRequest{
		Intent:   intent.DashboardSummary,
		ClientID: client.ID.String(),
		Params:   intent.Parameters{Period: 7},
	})
	if err != nil {
		return false, err
	}

	message := analysis.FormatWeeklySummary(raw, client.Name)
	return true, s.deliver(ctx, client, AlertTypeWeeklySummary, message)
}

func (s *Service) deliver(ctx context.Context, client AlertClient, alertType, message string) error {
	if s.sender != nil {
		if err := s.sender.SendMessage(ctx, client.Phone, message); err != nil {
			return fmt.Errorf("send alert: %w", err)
		}
	}

	// The alert already went out; audit logging is best-effort.
	if err := s.repo.LogAlert(ctx, client.ID, alertType, message); err != nil {
		s.log.DatabaseError("log alert", err)
	}

	s.bus.Publish(ctx, events.AlertSent{
		BaseEvent: events.NewBaseEvent(),
		ClientID:  client.ID,
		TenantID:  client.TenantID,
		AlertType: alertType,
		SentAt:    time.Now(),
	})
	return nil
}
