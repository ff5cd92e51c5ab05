package queue

import (
	"errors"
	"fmt"
	"testing"
)

func TestLedger_CompletedEvictsOldestPastCap(t *testing.T) {
	ledger := NewLedger(3, 3)

	for i := 0; i < 5; i++ {
		ledger.RecordCompleted(fmt.Sprintf("task-%d", i), TaskProcessMessage)
	}

	completed := ledger.Completed()
	if len(completed) != 3 {
		t.Fatalf("expected 3 retained records, got %d", len(completed))
	}
	if completed[0].TaskID != "task-2" || completed[2].TaskID != "task-4" {
		t.Fatalf("expected oldest task-2 and newest task-4, got %s and %s",
			completed[0].TaskID, completed[2].TaskID)
	}
}

func TestLedger_DeadKeepsErrorMessage(t *testing.T) {
	ledger := NewLedger(10, 10)
	ledger.RecordDead("task-1", TaskReanalyzeSession, errors.New("history load failed"))

	dead := ledger.Dead()
	if len(dead) != 1 {
		t.Fatalf("expected 1 dead record, got %d", len(dead))
	}
	if dead[0].Error != "history load failed" {
		t.Fatalf("unexpected error message: %q", dead[0].Error)
	}
	if dead[0].Type != TaskReanalyzeSession {
		t.Fatalf("unexpected type: %q", dead[0].Type)
	}
}

func TestLedger_DefaultsAppliedForInvalidCaps(t *testing.T) {
	ledger := NewLedger(0, -1)

	for i := 0; i < DefaultCompletedCap+10; i++ {
		ledger.RecordCompleted(fmt.Sprintf("c-%d", i), TaskProcessMessage)
	}
	if got := len(ledger.Completed()); got != DefaultCompletedCap {
		t.Fatalf("expected completed cap %d, got %d", DefaultCompletedCap, got)
	}

	for i := 0; i < DefaultDeadCap+10; i++ {
		ledger.RecordDead(fmt.Sprintf("d-%d", i), TaskProcessMessage, errors.New("x"))
	}
	if got := len(ledger.Dead()); got != DefaultDeadCap {
		t.Fatalf("expected dead cap %d, got %d", DefaultDeadCap, got)
	}
}

func TestLedger_ReturnsCopies(t *testing.T) {
	ledger := NewLedger(5, 5)
	ledger.RecordCompleted("task-1", TaskProcessMessage)

	snapshot := ledger.Completed()
	snapshot[0].TaskID = "mutated"

	if got := ledger.Completed()[0].TaskID; got != "task-1" {
		t.Fatalf("snapshot mutation leaked into ledger: %q", got)
	}
}
