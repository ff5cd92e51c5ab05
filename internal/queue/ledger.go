package queue

import (
	"sync"
	"time"
)

// Default retention caps, matching the broker's historical configuration:
// keep the last 100 completed and the last 200 dead jobs for inspection.
const (
	DefaultCompletedCap = 100
	DefaultDeadCap      = 200
)

// Record is one finished job, kept for operator inspection.
type Record struct {
	TaskID     string    `json:"taskId"`
	Type       string    `json:"type"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Ledger is a bounded in-process record of completed and dead jobs.
// Once a cap is reached the oldest record is evicted.
type Ledger struct {
	mu           sync.Mutex
	completed    []Record
	dead         []Record
	completedCap int
	deadCap      int
}

func NewLedger(completedCap, deadCap int) *Ledger {
	if completedCap < 1 {
		completedCap = DefaultCompletedCap
	}
	if deadCap < 1 {
		deadCap = DefaultDeadCap
	}
	return &Ledger{
		completedCap: completedCap,
		deadCap:      deadCap,
	}
}

// RecordCompleted appends a successful job, evicting the oldest past the cap.
func (l *Ledger) RecordCompleted(taskID, taskType string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = appendBounded(l.completed, Record{
		TaskID:     taskID,
		Type:       taskType,
		FinishedAt: time.Now(),
	}, l.completedCap)
}

// RecordDead appends a job that exhausted all retry attempts.
func (l *Ledger) RecordDead(taskID, taskType string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dead = appendBounded(l.dead, Record{
		TaskID:     taskID,
		Type:       taskType,
		Error:      msg,
		FinishedAt: time.Now(),
	}, l.deadCap)
}

// Completed returns a copy of the retained completed records, oldest first.
func (l *Ledger) Completed() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.completed))
	copy(out, l.completed)
	return out
}

// Dead returns a copy of the retained dead-letter records, oldest first.
func (l *Ledger) Dead() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.dead))
	copy(out, l.dead)
	return out
}

func appendBounded(records []Record, r Record, cap int) []Record {
	records = append(records, r)
	if len(records) > cap {
		records = records[len(records)-cap:]
	}
	return records
}
