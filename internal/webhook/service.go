// Package webhook ingests inbound WhatsApp traffic: it normalizes gateway
// payloads, resolves the owning tenant, persists the message, and hands the
// session to the asynchronous analysis pipeline.
package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"elite_crm_backend/internal/chat"
	"elite_crm_backend/internal/events"
	"elite_crm_backend/internal/leads/scoring"
	"elite_crm_backend/internal/queue"
	"elite_crm_backend/internal/whatsapp"
	"elite_crm_backend/platform/apperr"
	"elite_crm_backend/platform/logger"
)

// IngestResult reports what ingestion did with one payload.
type IngestResult struct {
	Accepted  bool       `json:"accepted"`
	Skipped   SkipReason `json:"skipped,omitempty"`
	SessionID uuid.UUID  `json:"sessionId,omitempty"`
	TaskID    string     `json:"taskId,omitempty"`
}

type Service struct {
	repo     *Repository
	chats    *chat.Repository
	scoring  *scoring.Service
	enqueuer queue.Enqueuer
	sender   whatsapp.Sender
	bus      events.Bus
	log      *logger.Logger
}

func NewService(
	repo *Repository,
	chats *chat.Repository,
	scoringSvc *scoring.Service,
	enqueuer queue.Enqueuer,
	sender whatsapp.Sender,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		chats:    chats,
		scoring:  scoringSvc,
		enqueuer: enqueuer,
		sender:   sender,
		bus:      bus,
		log:      log,
	}
}

// Ingest runs the full inbound flow for one gateway payload. Responding 200
// to the gateway is the caller's job even when the payload is skipped;
// gateways retry aggressively on non-2xx.
func (s *Service) Ingest(ctx context.Context, payload GatewayPayload) (IngestResult, error) {
	msg, skip := Extract(payload)
	if skip != SkipNone {
		s.log.WebhookEvent("payload skipped: "+string(skip), payload.Instance, "")
		return IngestResult{Skipped: skip}, nil
	}

	s.log.WebhookEvent("message received", msg.Instance, msg.Phone)

	tenantID, err := s.resolveTenant(ctx, msg)
	if err != nil {
		return IngestResult{}, err
	}

	client, err := s.repo.FindOrCreateClient(ctx, tenantID, msg.Phone, msg.Name)
	if err != nil {
		return IngestResult{}, fmt.Errorf("find or create client: %w", err)
	}

	clientID := client.ID
	session, err := s.chats.GetOrCreateActiveSession(ctx, tenantID, &clientID, msg.Phone, msg.Name)
	if err != nil {
		return IngestResult{}, fmt.Errorf("get or create session: %w", err)
	}

	if _, err := s.chats.AppendMessage(ctx, session.ID, chat.RoleUser, chat.SenderClient, msg.Phone, msg.Content); err != nil {
		return IngestResult{}, fmt.Errorf("persist message: %w", err)
	}

	s.bus.Publish(ctx, events.WhatsAppMessageReceived{
		BaseEvent: events.NewBaseEvent(),
		SessionID: session.ID,
		TenantID:  tenantID,
		Phone:     msg.Phone,
		Name:      msg.Name,
		Content:   msg.Content,
	})

	// Score drift is tolerable; the next message recomputes it anyway.
	if _, err := s.scoring.Recompute(ctx, tenantID, client.ID); err != nil {
		s.log.DatabaseError("recompute score", err)
	}

	taskID, err := s.enqueuer.EnqueueProcessMessage(ctx, queue.ProcessMessagePayload{
		SessionID: session.ID.String(),
		TenantID:  tenantID.String(),
		ClientID:  client.ID.String(),
		Phone:     msg.Phone,
		Content:   msg.Content,
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("enqueue analysis: %w", err)
	}

	return IngestResult{Accepted: true, SessionID: session.ID, TaskID: taskID}, nil
}

func (s *Service) resolveTenant(ctx context.Context, msg InboundMessage) (uuid.UUID, error) {
	tenantID, err := s.repo.ResolveTenantByInstance(ctx, msg.Instance)
	if err == nil {
		return tenantID, nil
	}
	if !errors.Is(err, ErrTenantNotFound) {
		return uuid.Nil, fmt.Errorf("resolve tenant: %w", err)
	}

	// Phone fallback is ambiguous across tenants; keep an audit trail.
	tenantID, err = s.repo.ResolveTenantByPhone(ctx, msg.Phone)
	if errors.Is(err, ErrTenantNotFound) {
		return uuid.Nil, apperr.NotFound("no tenant for instance or phone")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve tenant by phone: %w", err)
	}

	s.log.SecurityWarning("tenant resolved by phone fallback",
		fmt.Sprintf("instance=%s phone=%s tenant=%s", msg.Instance, msg.Phone, tenantID))
	return tenantID, nil
}

// Send delivers an outbound message through the gateway and records it in
// the session history as an agent line.
func (s *Service) Send(ctx context.Context, tenantID, sessionID uuid.UUID, senderID, content string) (chat.Message, error) {
	session, err := s.chats.GetSession(ctx, sessionID, tenantID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			return chat.Message{}, apperr.NotFound("session not found")
		}
		return chat.Message{}, err
	}

	if s.sender != nil {
		if err := s.sender.SendMessage(ctx, session.Phone, content); err != nil {
			return chat.Message{}, err
		}
	}

	msg, err := s.chats.AppendMessage(ctx, session.ID, chat.RoleAssistant, chat.SenderAgent, senderID, content)
	if err != nil {
		return chat.Message{}, fmt.Errorf("persist outbound message: %w", err)
	}
	return msg, nil
}

// Sessions lists a tenant's active conversations, most recent first.
func (s *Service) Sessions(ctx context.Context, tenantID uuid.UUID, limit int) ([]chat.Session, error) {
	return s.chats.ListActiveSessions(ctx, tenantID, limit)
}

// SessionMessages returns a session's history in chronological order.
func (s *Service) SessionMessages(ctx context.Context, tenantID, sessionID uuid.UUID, limit int) ([]chat.Message, error) {
	if _, err := s.chats.GetSession(ctx, sessionID, tenantID); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			return nil, apperr.NotFound("session not found")
		}
		return nil, err
	}
	return s.chats.History(ctx, sessionID, limit)
}

// DeleteSession removes a conversation and its messages.
func (s *Service) DeleteSession(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	err := s.chats.DeleteSession(ctx, sessionID, tenantID)
	if errors.Is(err, chat.ErrSessionNotFound) {
		return apperr.NotFound("session not found")
	}
	return err
}

// Reanalyze enqueues a full re-analysis of a session's recent history.
func (s *Service) Reanalyze(ctx context.Context, tenantID, sessionID uuid.UUID) (string, error) {
	session, err := s.chats.GetSession(ctx, sessionID, tenantID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			return "", apperr.NotFound("session not found")
		}
		return "", err
	}

	payload := queue.ReanalyzeSessionPayload{
		SessionID: session.ID.String(),
		TenantID:  tenantID.String(),
		Phone:     session.Phone,
	}
	if session.ClientID != nil {
		payload.ClientID = session.ClientID.String()
	}
	return s.enqueuer.EnqueueReanalyzeSession(ctx, payload)
}
