package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAnalysisNotFound = errors.New("sales analysis not found")

// SalesAnalysis is one persisted coaching snapshot for a session.
type SalesAnalysis struct {
	ID                uuid.UUID       `json:"id"`
	SessionID         uuid.UUID       `json:"sessionId"`
	TenantID          uuid.UUID       `json:"tenantId"`
	Sentiment         string          `json:"sentiment"`
	BuyingStage       string          `json:"buyingStage"`
	SuggestedStrategy string          `json:"suggestedStrategy"`
	NextBestAction    string          `json:"nextBestAction"`
	Raw               json.RawMessage `json:"raw,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAnalysis appends a coaching snapshot. History is kept; the dashboard
// reads the latest row per session.
func (r *Repository) SaveAnalysis(ctx context.Context, tenantID, sessionID uuid.UUID, result CoachingResult) (SalesAnalysis, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return SalesAnalysis{}, err
	}

	a := SalesAnalysis{
		ID:                uuid.New(),
		SessionID:         sessionID,
		TenantID:          tenantID,
		Sentiment:         result.Sentiment,
		BuyingStage:       result.BuyingStage,
		SuggestedStrategy: result.SuggestedStrategy,
		NextBestAction:    result.NextBestAction,
		Raw:               raw,
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO sales_analyses
			(id, session_id, tenant_id, sentiment, buying_stage, suggested_strategy, next_best_action, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING created_at`,
		a.ID, a.SessionID, a.TenantID, a.Sentiment, a.BuyingStage, a.SuggestedStrategy, a.NextBestAction, raw,
	).Scan(&a.CreatedAt)
	if err != nil {
		return SalesAnalysis{}, err
	}
	return a, nil
}

// LatestAnalysis returns the most recent coaching snapshot for a session.
func (r *Repository) LatestAnalysis(ctx context.Context, tenantID, sessionID uuid.UUID) (SalesAnalysis, error) {
	var a SalesAnalysis
	err := r.pool.QueryRow(ctx, `
		SELECT id, session_id, tenant_id, sentiment, buying_stage, suggested_strategy, next_best_action, raw, created_at
		FROM sales_analyses
		WHERE tenant_id = $1 AND session_id = $2
		ORDER BY created_at DESC
		LIMIT 1`,
		tenantID, sessionID,
	).Scan(&a.ID, &a.SessionID, &a.TenantID, &a.Sentiment, &a.BuyingStage, &a.SuggestedStrategy, &a.NextBestAction, &a.Raw, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalesAnalysis{}, ErrAnalysisNotFound
	}
	if err != nil {
		return SalesAnalysis{}, err
	}
	return a, nil
}

// ClientName resolves a contact's display name for message personalization.
func (r *Repository) ClientName(ctx context.Context, tenantID, clientID uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `
		SELECT name FROM clients WHERE id = $1 AND tenant_id = $2`,
		clientID, tenantID,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
