package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTenantNotFound = errors.New("no tenant for webhook instance")

// Client is a contact known to a tenant, keyed by phone.
type Client struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	Phone             string
	Name              string
	PlanStatus        string
	LastInteractionAt time.Time
	CreatedAt         time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResolveTenantByInstance maps a gateway instance name to its owning tenant.
func (r *Repository) ResolveTenantByInstance(ctx context.Context, instance string) (uuid.UUID, error) {
	var tenantID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id FROM whatsapp_instances
		WHERE instance_name = $1 AND active = true`,
		instance,
	).Scan(&tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrTenantNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return tenantID, nil
}

// ResolveTenantByPhone finds the tenant of the most recently active client
// with this phone number. Used only when instance resolution fails; phone
// numbers are not unique across tenants, so callers must log this path.
func (r *Repository) ResolveTenantByPhone(ctx context.Context, phone string) (uuid.UUID, error) {
	var tenantID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id FROM clients
		WHERE phone = $1
		ORDER BY last_interaction_at DESC
		LIMIT 1`,
		phone,
	).Scan(&tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrTenantNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return tenantID, nil
}

// FindOrCreateClient upserts the contact record for an inbound message and
// bumps last_interaction_at. The name is only set when we learn a better one.
func (r *Repository) FindOrCreateClient(ctx context.Context, tenantID uuid.UUID, phone, name string) (Client, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (id, tenant_id, phone, name, plan_status, last_interaction_at, created_at)
		VALUES ($1, $2, $3, $4, 'active', now(), now())
		ON CONFLICT (tenant_id, phone) DO UPDATE SET
			last_interaction_at = now(),
			name = CASE
				WHEN clients.name = '' AND EXCLUDED.name <> '' THEN EXCLUDED.name
				ELSE clients.name
			END
		RETURNING id, tenant_id, phone, name, plan_status, last_interaction_at, created_at`,
		uuid.New(), tenantID, phone, name,
	)

	var c Client
	if err := row.Scan(&c.ID, &c.TenantID, &c.Phone, &c.Name, &c.PlanStatus, &c.LastInteractionAt, &c.CreatedAt); err != nil {
		return Client{}, err
	}
	return c, nil
}
