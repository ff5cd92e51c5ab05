package sse

import (
	"context"

	"github.com/google/uuid"

	"elite_crm_backend/internal/events"
)

// Bridge forwards pipeline domain events to the SSE hub. Each event is
// re-emitted to the owning tenant's dashboards under its domain name.
func Bridge(bus events.Bus, hub *Service) {
	forward := func(name string, extract func(events.Event) (uuid.UUID, bool)) {
		bus.Subscribe(name, events.HandlerFunc(func(_ context.Context, e events.Event) error {
			if tenantID, ok := extract(e); ok {
				hub.Publish(tenantID, Event{Type: name, Data: e})
			}
			return nil
		}))
	}

	forward("whatsapp_message", func(e events.Event) (uuid.UUID, bool) {
		ev, ok := e.(events.WhatsAppMessageReceived)
		return ev.TenantID, ok
	})
	forward("sales_coaching_update", func(e events.Event) (uuid.UUID, bool) {
		ev, ok := e.(events.SalesCoachingUpdated)
		return ev.TenantID, ok
	})
	forward("ml-analysis-complete", func(e events.Event) (uuid.UUID, bool) {
		ev, ok := e.(events.MLAnalysisCompleted)
		return ev.TenantID, ok
	})
	forward("ml-analysis-error", func(e events.Event) (uuid.UUID, bool) {
		ev, ok := e.(events.MLAnalysisFailed)
		return ev.TenantID, ok
	})
	forward("lead_updated", func(e events.Event) (uuid.UUID, bool) {
		ev, ok := e.(events.LeadStatusUpdated)
		return ev.TenantID, ok
	})
	forward("alert_sent", func(e events.Event) (uuid.UUID, bool) {
		ev, ok := e.(events.AlertSent)
		return ev.TenantID, ok
	})
}
