// Package chat provides data access for conversation sessions and messages.
// Messages are append-only; ordering by created_at defines the conversation
// history.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSessionNotFound = errors.New("chat session not found")

// Session is one ongoing conversation thread with a contact.
type Session struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	ClientID    *uuid.UUID
	Channel     string
	Status      string
	Phone       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is one inbound or outbound chat line.
type Message struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Role       string
	SenderType string
	SenderID   string
	Content    string
	CreatedAt  time.Time
}

// Message roles and sender types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	SenderClient = "client"
	SenderAgent  = "agent"
	SenderBot    = "bot"
)

const ChannelWhatsApp = "whatsapp"

const (
	SessionActive = "active"
	SessionClosed = "closed"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `id, tenant_id, client_id, channel, status, phone, display_name, created_at, updated_at`

// GetOrCreateActiveSession resolves the active session for a contact,
// creating one atomically when none exists. The partial unique index on
// (tenant_id, phone) for active sessions makes concurrent first messages
// converge on a single row; the most-recent read remains for rows that
// predate the index.
func (r *Repository) GetOrCreateActiveSession(ctx context.Context, tenantID uuid.UUID, clientID *uuid.UUID, phone, displayName string) (Session, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_sessions (tenant_id, client_id, channel, status, phone, display_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, phone) WHERE status = 'active' DO NOTHING
	`, tenantID, clientID, ChannelWhatsApp, SessionActive, phone, displayName)
	if err != nil {
		return Session{}, err
	}

	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM chat_sessions
		WHERE tenant_id = $1
		  AND status = 'active'
		  AND (client_id = $2 OR phone = $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, tenantID, clientID, phone)
	return scanSession(row)
}

// GetSession returns a session by id within a tenant.
func (r *Repository) GetSession(ctx context.Context, id, tenantID uuid.UUID) (Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM chat_sessions
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanSession(row)
}

// ListActiveSessions returns the most recently updated active sessions.
func (r *Repository) ListActiveSessions(ctx context.Context, tenantID uuid.UUID, limit int) ([]Session, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM chat_sessions
		WHERE tenant_id = $1 AND channel = $2 AND status = 'active'
		ORDER BY updated_at DESC
		LIMIT $3
	`, tenantID, ChannelWhatsApp, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and its messages.
func (r *Repository) DeleteSession(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM chat_sessions WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendMessage stores one chat line and bumps the session's updated_at.
func (r *Repository) AppendMessage(ctx context.Context, sessionID uuid.UUID, role, senderType, senderID, content string) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (session_id, role, sender_type, sender_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, session_id, role, sender_type, sender_id, content, created_at
	`, sessionID, role, senderType, senderID, content).Scan(
		&m.ID, &m.SessionID, &m.Role, &m.SenderType, &m.SenderID, &m.Content, &m.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE chat_sessions SET updated_at = now() WHERE id = $1
	`, sessionID)
	return m, err
}

// History returns the last limit messages of a session in chronological
// order. This is a best-effort snapshot: concurrent jobs for the same session
// may observe different cuts.
func (r *Repository) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]Message, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, role, sender_type, sender_id, content, created_at
		FROM (
			SELECT id, session_id, role, sender_type, sender_id, content, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.SessionID, &m.Role, &m.SenderType, &m.SenderID, &m.Content, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountUserMessages counts inbound messages for a contact within a tenant,
// matched by client or phone.
func (r *Repository) CountUserMessages(ctx context.Context, tenantID uuid.UUID, clientID *uuid.UUID, phone string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chat_messages cm
		JOIN chat_sessions cs ON cm.session_id = cs.id
		WHERE cs.tenant_id = $1
		  AND (cs.client_id = $2 OR cs.phone = $3)
		  AND cm.role = $4
	`, tenantID, clientID, phone, RoleUser).Scan(&count)
	return count, err
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.TenantID, &s.ClientID, &s.Channel, &s.Status,
		&s.Phone, &s.DisplayName, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}
