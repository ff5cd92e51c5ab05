package sse

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func newTestService() *Service {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublish_ReachesOnlyTenantClients(t *testing.T) {
	svc := newTestService()
	tenantA := uuid.New()
	tenantB := uuid.New()

	a := &client{tenantID: tenantA, events: make(chan Event, 1)}
	b := &client{tenantID: tenantB, events: make(chan Event, 1)}
	svc.addClient(a)
	svc.addClient(b)

	svc.Publish(tenantA, Event{Type: "lead_updated"})

	select {
	case ev := <-a.events:
		if ev.Type != "lead_updated" {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	default:
		t.Fatal("tenant A client received nothing")
	}
	select {
	case ev := <-b.events:
		t.Fatalf("tenant B client received %q", ev.Type)
	default:
	}
}

func TestPublish_DropsFramesWhenBufferFull(t *testing.T) {
	svc := newTestService()
	tenantID := uuid.New()

	c := &client{tenantID: tenantID, events: make(chan Event, 1)}
	svc.addClient(c)

	svc.Publish(tenantID, Event{Type: "first"})
	svc.Publish(tenantID, Event{Type: "second"})

	if ev := <-c.events; ev.Type != "first" {
		t.Fatalf("expected buffered frame, got %q", ev.Type)
	}
	select {
	case ev := <-c.events:
		t.Fatalf("overflow frame %q was not dropped", ev.Type)
	default:
	}
}

func TestRemoveClient_AfterCloseDoesNotPanic(t *testing.T) {
	svc := newTestService()
	c := &client{tenantID: uuid.New(), events: make(chan Event, 1)}
	svc.addClient(c)

	svc.Close()

	// A handler unwinding after shutdown removes a client whose channel
	// Close already closed.
	svc.removeClient(c)

	if _, ok := <-c.events; ok {
		t.Fatal("expected closed channel")
	}
}

func TestRemoveClient_ClosesChannelAndDropsTenant(t *testing.T) {
	svc := newTestService()
	tenantID := uuid.New()
	c := &client{tenantID: tenantID, events: make(chan Event, 1)}
	svc.addClient(c)

	svc.removeClient(c)

	if _, ok := <-c.events; ok {
		t.Fatal("expected closed channel")
	}
	svc.mu.RLock()
	_, present := svc.clients[tenantID]
	svc.mu.RUnlock()
	if present {
		t.Fatal("empty tenant entry not removed")
	}
}
