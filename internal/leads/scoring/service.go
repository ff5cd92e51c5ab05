// Package scoring recomputes lead engagement scores from profile
// completeness, chat activity and pipeline position.
package scoring

import (
	"context"

	"elite_crm_backend/internal/leads/domain"
	"elite_crm_backend/internal/leads/repository"
	"elite_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Point values per factor. Engagement dominates: every user message is worth
// two points, and pipeline progress outweighs profile completeness.
const (
	pointsEmail       = 5
	pointsPhone       = 10
	pointsCompany     = 5
	pointsHighValue   = 10
	pointsPerMessage  = 2
	pointsQualified   = 20
	pointsNegotiation = 40

	highValueThreshold = 5000
)

// MessageCounter counts a contact's inbound chat messages. Satisfied by the
// chat repository.
type MessageCounter interface {
	CountUserMessages(ctx context.Context, tenantID uuid.UUID, clientID *uuid.UUID, phone string) (int, error)
}

type Service struct {
	repo     *repository.Repository
	messages MessageCounter
	log      *logger.Logger
}

func New(repo *repository.Repository, messages MessageCounter, log *logger.Logger) *Service {
	return &Service{repo: repo, messages: messages, log: log}
}

// Recompute recalculates and persists the score for the client's lead.
// Contacts without a lead are skipped silently.
func (s *Service) Recompute(ctx context.Context, tenantID, clientID uuid.UUID) (int, error) {
	lead, err := s.repo.GetByClient(ctx, tenantID, clientID)
	if err != nil {
		if err == repository.ErrLeadNotFound {
			return 0, nil
		}
		return 0, err
	}

	score := Score(lead, 0)

	count, err := s.messages.CountUserMessages(ctx, tenantID, lead.ClientID, lead.Phone)
	if err != nil {
		s.log.DatabaseError("count user messages", err)
	} else {
		score = Score(lead, count)
	}

	if err := s.repo.UpdateScore(ctx, lead.ID, tenantID, score); err != nil {
		return 0, err
	}

	s.log.Debug("lead score recomputed", "lead_id", lead.ID, "score", score)
	return score, nil
}

// Score is the pure scoring function over a lead and its message count.
func Score(lead repository.Lead, userMessages int) int {
	score := 0

	if lead.Email != nil && *lead.Email != "" {
		score += pointsEmail
	}
	if lead.Phone != "" {
		score += pointsPhone
	}
	if lead.Company != nil && *lead.Company != "" {
		score += pointsCompany
	}
	if lead.Value > highValueThreshold {
		score += pointsHighValue
	}

	score += userMessages * pointsPerMessage

	switch lead.Status {
	case domain.StatusQualified:
		score += pointsQualified
	case domain.StatusNegotiation:
		score += pointsNegotiation
	}

	return score
}
