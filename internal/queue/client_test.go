package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"

	"elite_crm_backend/platform/logger"
)

type testQueueConfig struct {
	redisURL string
}

func (c testQueueConfig) GetRedisURL() string                { return c.redisURL }
func (c testQueueConfig) GetQueueName() string               { return "pipeline" }
func (c testQueueConfig) GetQueueConcurrency() int           { return 2 }
func (c testQueueConfig) GetQueueMaxAttempts() int           { return 3 }
func (c testQueueConfig) GetQueueBackoffBase() time.Duration { return time.Second }

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	cfg := testQueueConfig{redisURL: "redis://" + srv.Addr()}

	client, err := NewClient(cfg, logger.New("development"))
	if err != nil {
		t.Fatalf("failed to create queue client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, srv
}

func TestClient_EnqueueProcessMessage(t *testing.T) {
	client, srv := newTestClient(t)

	taskID, err := client.EnqueueProcessMessage(context.Background(), ProcessMessagePayload{
		SessionID: "8d5e9571-6f2a-4f0e-b5cb-2f8b1c7b9f1e",
		TenantID:  "1a0c2b3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d",
		Phone:     "+5511999999999",
		Content:   "Quanto vou vender no próximo mês?",
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if taskID == "" {
		t.Fatal("expected a broker task id")
	}

	// With maxAttempts=3 the broker task keeps a budget of two redeliveries,
	// so the task runs exactly three times before dead-lettering.
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = inspector.Close()
	})

	info, err := inspector.GetTaskInfo("pipeline", taskID)
	if err != nil {
		t.Fatalf("inspect task: %v", err)
	}
	if info.MaxRetry != 2 {
		t.Fatalf("expected retry budget 2, got %d", info.MaxRetry)
	}
}

func TestClient_EnqueueAlertBatchDeduplicates(t *testing.T) {
	client, _ := newTestClient(t)
	payload := AlertBatchPayload{BatchID: "2026-08-29"}

	first, err := client.EnqueueAlertBatch(context.Background(), TaskDailyAlerts, payload)
	if err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}

	// A second scheduler instance enqueueing the same tick collapses into the
	// first task instead of erroring.
	second, err := client.EnqueueAlertBatch(context.Background(), TaskDailyAlerts, payload)
	if err != nil {
		t.Fatalf("duplicate enqueue failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected deduplicated task id, got %q and %q", first, second)
	}
	if first != BatchTaskID(TaskDailyAlerts, payload.BatchID, 0) {
		t.Fatalf("unexpected batch task id: %q", first)
	}
}

func TestClient_CloseIsNilSafe(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Fatalf("expected nil error from nil client, got %v", err)
	}
}
