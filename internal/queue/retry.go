package queue

import (
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// RetryDelay returns the exponential backoff delay for the n-th retry:
// base, 2·base, 4·base, ... n is the number of times the task has already
// been retried, so the first redelivery waits exactly base.
func RetryDelay(base time.Duration) asynq.RetryDelayFunc {
	return func(n int, _ error, _ *asynq.Task) time.Duration {
		return base << uint(n)
	}
}

// retryBudget converts a total-attempts setting into asynq's MaxRetry,
// which counts redeliveries after the first attempt.
func retryBudget(maxAttempts int) int {
	if maxAttempts < 1 {
		return 0
	}
	return maxAttempts - 1
}

// exhausted reports whether a failed attempt was the task's last: the retry
// budget is spent, or the handler refused redelivery outright.
func exhausted(retried, maxRetry int, err error) bool {
	return retried >= maxRetry || errors.Is(err, asynq.SkipRetry)
}
