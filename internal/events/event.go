// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"elite_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Chat Domain Events
// =============================================================================

// WhatsAppMessageReceived is published as soon as an inbound message is
// persisted, before any analysis runs, so the dashboard updates immediately.
type WhatsAppMessageReceived struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
}

func (e WhatsAppMessageReceived) EventName() string { return "whatsapp_message" }

// =============================================================================
// Analysis Domain Events
// =============================================================================

// SalesCoachingUpdated is published after a coaching analysis is persisted.
type SalesCoachingUpdated struct {
	BaseEvent
	SessionID         uuid.UUID `json:"sessionId"`
	TenantID          uuid.UUID `json:"tenantId"`
	Sentiment         string    `json:"sentiment"`
	BuyingStage       string    `json:"buyingStage"`
	SuggestedStrategy string    `json:"suggestedStrategy"`
	NextBestAction    string    `json:"nextBestAction"`
}

func (e SalesCoachingUpdated) EventName() string { return "sales_coaching_update" }

// MLAnalysisCompleted is published when an intent-matched ML analysis has run
// and its formatted response has been stored.
type MLAnalysisCompleted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Intent    string    `json:"intent"`
	Response  string    `json:"response"`
}

func (e MLAnalysisCompleted) EventName() string { return "ml-analysis-complete" }

// MLAnalysisFailed is published when the ML analysis branch degraded.
type MLAnalysisFailed struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Intent    string    `json:"intent"`
	Reason    string    `json:"reason"`
}

func (e MLAnalysisFailed) EventName() string { return "ml-analysis-error" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadStatusUpdated is published when the stage state machine moves a lead.
type LeadStatusUpdated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenantId"`
	Status   string    `json:"status"`
}

func (e LeadStatusUpdated) EventName() string { return "lead_updated" }

// =============================================================================
// Alerts Domain Events
// =============================================================================

// AlertSent is published when the scheduler delivers a proactive alert.
type AlertSent struct {
	BaseEvent
	ClientID  uuid.UUID `json:"clientId"`
	TenantID  uuid.UUID `json:"tenantId"`
	AlertType string    `json:"alertType"`
	SentAt    time.Time `json:"sentAt"`
}

func (e AlertSent) EventName() string { return "alert_sent" }
