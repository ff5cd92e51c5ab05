package queue

import (
	"context"
	"errors"
	"fmt"

	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker pulls tasks from the shared queue and dispatches them to registered
// handlers with a bounded concurrency ceiling. Delivery is at-least-once:
// handlers must tolerate duplicate execution.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	ledger *Ledger
	log    *logger.Logger
}

func NewWorker(cfg config.QueueConfig, ledger *Ledger, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	w := &Worker{
		ledger: ledger,
		log:    log,
	}

	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.GetQueueConcurrency(),
		Queues: map[string]int{
			queue: 1,
		},
		RetryDelayFunc: RetryDelay(cfg.GetQueueBackoffBase()),
		ErrorHandler:   asynq.ErrorHandlerFunc(w.onError),
	})

	mux := asynq.NewServeMux()
	mux.Use(w.observe)
	w.mux = mux

	return w, nil
}

// HandleFunc registers a handler for a task type.
func (w *Worker) HandleFunc(taskType string, handler func(context.Context, *asynq.Task) error) {
	w.mux.HandleFunc(taskType, handler)
}

// Run serves tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("queue worker stopped: %w", err)
	}
	return nil
}

// observe wraps every handler: recovered panics surface through asynq as
// failures, cancellation does not consume a retry attempt, and completions
// land in the ledger.
func (w *Worker) observe(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		taskID, _ := asynq.GetTaskID(ctx)

		err := next.ProcessTask(ctx, task)
		if err == nil {
			w.ledger.RecordCompleted(taskID, task.Type())
			w.log.JobEvent("completed", taskID, task.Type())
			return nil
		}

		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("cancelled: %v: %w", err, asynq.SkipRetry)
		}
		return err
	})
}

// onError fires on every failed attempt; only exhausted tasks go to the
// dead-letter ledger.
func (w *Worker) onError(ctx context.Context, task *asynq.Task, err error) {
	taskID, _ := asynq.GetTaskID(ctx)
	w.log.JobError(taskID, task.Type(), err)

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if exhausted(retried, maxRetry, err) {
		w.ledger.RecordDead(taskID, task.Type(), err)
	}
}
