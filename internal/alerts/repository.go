package alerts

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Advisory lock keys serializing batch runs across worker instances.
const (
	leaseDailyAlerts  int64 = 92001
	leaseWeeklyAlerts int64 = 92002
)

const maxLoggedMessage = 1000

// AlertClient is one active client eligible for proactive alerts.
type AlertClient struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Phone    string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveClients returns clients on an active plan with a reachable phone.
func (r *Repository) ActiveClients(ctx context.Context, limit int) ([]AlertClient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, phone
		FROM clients
		WHERE plan_status = 'active' AND phone IS NOT NULL AND phone <> ''
		ORDER BY last_interaction_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []AlertClient
	for rows.Next() {
		var c AlertClient
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// LogAlert records a delivered alert. Messages are truncated to keep the
// audit table small.
func (r *Repository) LogAlert(ctx context.Context, clientID uuid.UUID, alertType, message string) error {
	if len(message) > maxLoggedMessage {
		cut := maxLoggedMessage
		// Back up to a rune boundary so the stored text stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		message = message[:cut]
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO ml_alerts (id, client_id, alert_type, message, sent_at)
		VALUES ($1, $2, $3, $4, now())`,
		uuid.New(), clientID, alertType, message,
	)
	return err
}

// AcquireLease takes a session-level advisory lock. When the lock is already
// held by another worker the second return is false and the batch is skipped.
// The returned release func must be called exactly once when true.
func (r *Repository) AcquireLease(ctx context.Context, key int64) (func(), bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, err
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		// Unlock on a fresh context; the batch context may already be done.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
		conn.Release()
	}
	return release, true, nil
}
