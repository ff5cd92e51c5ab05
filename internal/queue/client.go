// Package queue implements the durable job queue on top of asynq/Redis:
// typed task payloads, a producer client, a worker with bounded concurrency
// and exponential retry backoff, and a bounded completion/failure ledger.
package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Enqueuer is the producer-side interface the ingestion router depends on.
type Enqueuer interface {
	EnqueueProcessMessage(ctx context.Context, payload ProcessMessagePayload) (string, error)
	EnqueueReanalyzeSession(ctx context.Context, payload ReanalyzeSessionPayload) (string, error)
}

// Client enqueues pipeline tasks.
type Client struct {
	client      *asynq.Client
	queue       string
	maxAttempts int
	timeout     time.Duration
	log         *logger.Logger
}

func NewClient(cfg config.QueueConfig, log *logger.Logger) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	return &Client{
		client:      asynq.NewClient(opt),
		queue:       cfg.GetQueueName(),
		maxAttempts: cfg.GetQueueMaxAttempts(),
		// Bounds a stuck LLM or ML call; ten times the backoff base.
		timeout: cfg.GetQueueBackoffBase() * 10,
		log:     log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueProcessMessage queues an inbound message for analysis and returns the
// broker task id. It never blocks beyond the broker round-trip.
func (c *Client) EnqueueProcessMessage(ctx context.Context, payload ProcessMessagePayload) (string, error) {
	task, err := NewProcessMessageTask(payload)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task)
}

// EnqueueReanalyzeSession queues a full-session re-analysis.
func (c *Client) EnqueueReanalyzeSession(ctx context.Context, payload ReanalyzeSessionPayload) (string, error) {
	task, err := NewReanalyzeSessionTask(payload)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task)
}

// EnqueueAlertBatch queues a scheduled alert batch with a deterministic task
// id so a second scheduler instance enqueueing the same batch is a no-op.
func (c *Client) EnqueueAlertBatch(ctx context.Context, taskType string, payload AlertBatchPayload) (string, error) {
	task, err := NewAlertBatchTask(taskType, payload)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(retryBudget(c.maxAttempts)),
		asynq.TaskID(BatchTaskID(taskType, payload.BatchID, 0)),
		// A whole-client scan does not fit the per-message ceiling.
		asynq.Timeout(10*time.Minute),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		c.log.JobEvent("deduplicated", BatchTaskID(taskType, payload.BatchID, 0), taskType)
		return BatchTaskID(taskType, payload.BatchID, 0), nil
	}
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	c.log.JobEvent("enqueued", info.ID, taskType)
	return info.ID, nil
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) (string, error) {
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(retryBudget(c.maxAttempts)),
		asynq.Timeout(c.timeout),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}

	c.log.JobEvent("enqueued", info.ID, task.Type())
	return info.ID, nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		tlsConfig = opt.TLSConfig.Clone()
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
