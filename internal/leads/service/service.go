// Package service implements the lead stage state machine: it maps an
// LLM-inferred buying stage onto the CRM status pipeline and persists the
// resulting transition.
package service

import (
	"context"
	"errors"

	"elite_crm_backend/internal/events"
	"elite_crm_backend/internal/leads/domain"
	"elite_crm_backend/internal/leads/repository"
	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo      *repository.Repository
	bus       events.Bus
	monotonic bool
	log       *logger.Logger
}

func New(repo *repository.Repository, bus events.Bus, cfg config.LeadsConfig, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		bus:       bus,
		monotonic: cfg.IsLeadStageMonotonic(),
		log:       log,
	}
}

// ApplyBuyingStage moves the client's lead according to the buying-stage
// label. No-op decisions (unknown label, terminal or identical status,
// backward move under monotonic mode) neither write nor publish. A contact
// with no lead yet gets one created in status "new" before evaluation.
func (s *Service) ApplyBuyingStage(ctx context.Context, tenantID, clientID uuid.UUID, phone, buyingStage string) error {
	lead, err := s.repo.GetOrCreate(ctx, tenantID, clientID, phone)
	if err != nil {
		return err
	}

	decision := domain.EvaluateStage(lead.Status, buyingStage, s.monotonic)
	if !decision.Transition {
		s.log.Debug("lead stage unchanged",
			"lead_id", lead.ID, "status", lead.Status, "buying_stage", buyingStage)
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, lead.ID, tenantID, decision.Target); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			// Deleted between read and write; nothing to move.
			return nil
		}
		return err
	}

	s.log.Info("lead stage updated",
		"lead_id", lead.ID, "from", lead.Status, "to", decision.Target)

	s.bus.Publish(ctx, events.LeadStatusUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		Status:    string(decision.Target),
	})
	return nil
}
