// Package repository provides data access for leads.
package repository

import (
	"context"
	"errors"
	"time"

	"elite_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead is a sales prospect tracked in the CRM, scoped to one tenant.
type Lead struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ClientID  *uuid.UUID
	Phone     string
	Email     *string
	Company   *string
	Value     float64
	Status    domain.Status
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, tenant_id, client_id, phone, email, company, value, status, score, created_at, updated_at`

// GetByClient returns the most recent lead for a client within a tenant.
func (r *Repository) GetByClient(ctx context.Context, tenantID, clientID uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE tenant_id = $1 AND client_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, tenantID, clientID)
	return scanLead(row)
}

// GetByPhone returns the most recent lead matching a phone within a tenant.
func (r *Repository) GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE tenant_id = $1 AND phone = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, tenantID, phone)
	return scanLead(row)
}

// GetOrCreate resolves the lead for a client, creating a fresh one in status
// "new" when the contact has never been tracked.
func (r *Repository) GetOrCreate(ctx context.Context, tenantID, clientID uuid.UUID, phone string) (Lead, error) {
	lead, err := r.GetByClient(ctx, tenantID, clientID)
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, ErrLeadNotFound) {
		return Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (tenant_id, client_id, phone, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+leadColumns+`
	`, tenantID, clientID, phone, domain.StatusNew)
	return scanLead(row)
}

// UpdateStatus persists a status transition.
func (r *Repository) UpdateStatus(ctx context.Context, id, tenantID uuid.UUID, status domain.Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// UpdateScore persists a recomputed lead score.
func (r *Repository) UpdateScore(ctx context.Context, id, tenantID uuid.UUID, score int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET score = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, score)
	return err
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.TenantID, &l.ClientID, &l.Phone, &l.Email, &l.Company,
		&l.Value, &l.Status, &l.Score, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	return l, err
}
