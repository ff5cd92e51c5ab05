package queue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestRetryDelay_ExponentialFromBase(t *testing.T) {
	delay := RetryDelay(time.Second)

	cases := []struct {
		retried int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
	}

	for _, tc := range cases {
		if got := delay(tc.retried, errors.New("boom"), nil); got != tc.want {
			t.Fatalf("retry %d: expected %v, got %v", tc.retried, tc.want, got)
		}
	}
}

func TestRetryDelay_CustomBase(t *testing.T) {
	delay := RetryDelay(500 * time.Millisecond)
	if got := delay(2, nil, nil); got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}
}

func TestRetryBudget(t *testing.T) {
	cases := []struct {
		maxAttempts int
		want        int
	}{
		{3, 2},
		{1, 0},
		{0, 0},
		{-1, 0},
	}

	for _, tc := range cases {
		if got := retryBudget(tc.maxAttempts); got != tc.want {
			t.Fatalf("retryBudget(%d) = %d, want %d", tc.maxAttempts, got, tc.want)
		}
	}
}

func TestExhausted(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name     string
		retried  int
		maxRetry int
		err      error
		want     bool
	}{
		{"budget remaining", 1, 2, boom, false},
		{"budget spent", 2, 2, boom, true},
		{"past budget", 3, 2, boom, true},
		{"skip retry dead letters immediately", 0, 2, fmt.Errorf("cancelled: %w", asynq.SkipRetry), true},
		{"no retries configured", 0, 0, boom, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exhausted(tc.retried, tc.maxRetry, tc.err); got != tc.want {
				t.Fatalf("exhausted(%d, %d, %v) = %t, want %t", tc.retried, tc.maxRetry, tc.err, got, tc.want)
			}
		})
	}
}

func TestBatchTaskID(t *testing.T) {
	got := BatchTaskID(TaskDailyAlerts, "2026-08-29", 0)
	if got != "alerts.daily_2026-08-29_0" {
		t.Fatalf("unexpected batch task id: %q", got)
	}

	// Same batch on the same day always yields the same id.
	if again := BatchTaskID(TaskDailyAlerts, "2026-08-29", 0); again != got {
		t.Fatalf("expected deterministic id, got %q and %q", got, again)
	}
}
