package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"provision_chat_backend/internal/chat/qualification"
	"provision_chat_backend/platform/apperr"
)

const conversationNotFoundMessage = "conversation not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetConversation retrieves a conversation by session ID.
func (r *Repo) GetConversation(ctx context.Context, sessionID string) (Conversation, error) {
	query := `
		SELECT session_id, channel, lead_id, qualification_progress, qualification_answers,
		       is_qualified, appointment_booked, created_at, updated_at
		FROM conversations
		WHERE session_id = $1`

	var conv Conversation
	var answersJSON []byte

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&conv.SessionID, &conv.Channel, &conv.LeadID,
		&conv.State.Progress, &answersJSON,
		&conv.State.IsQualified, &conv.State.AppointmentBooked,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &conv.State.Answers); err != nil {
			return Conversation{}, fmt.Errorf("decode qualification answers: %w", err)
		}
	}
	return conv, nil
}

// CreateConversation inserts a new conversation for a session.
func (r *Repo) CreateConversation(ctx context.Context, sessionID, channel string) (Conversation, error) {
	query := `
		INSERT INTO conversations (session_id, channel, qualification_progress, qualification_answers,
		                           is_qualified, appointment_booked)
		VALUES ($1, $2, 0, '{}'::jsonb, false, false)
		RETURNING created_at, updated_at`

	conv := Conversation{
		SessionID: sessionID,
		Channel:   channel,
		State:     qualification.NewState(),
	}
	err := r.pool.QueryRow(ctx, query, sessionID, channel).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// SaveState persists the qualification state for a session.
func (r *Repo) SaveState(ctx context.Context, sessionID string, state qualification.State) error {
	answersJSON, err := json.Marshal(state.Answers)
	if err != nil {
		return fmt.Errorf("encode qualification answers: %w", err)
	}

	query := `
		UPDATE conversations
		SET qualification_progress = $2,
		    qualification_answers = $3,
		    is_qualified = $4,
		    appointment_booked = $5,
		    updated_at = NOW()
		WHERE session_id = $1`

	tag, err := r.pool.Exec(ctx, query, sessionID, state.Progress, answersJSON, state.IsQualified, state.AppointmentBooked)
	if err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(conversationNotFoundMessage)
	}
	return nil
}

// LinkLead attaches a lead to the conversation.
func (r *Repo) LinkLead(ctx context.Context, sessionID string, leadID int64) error {
	query := `UPDATE conversations SET lead_id = $2, updated_at = NOW() WHERE session_id = $1`

	tag, err := r.pool.Exec(ctx, query, sessionID, leadID)
	if err != nil {
		return fmt.Errorf("link conversation to lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(conversationNotFoundMessage)
	}
	return nil
}

// AppendMessage stores one conversation turn.
func (r *Repo) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	query := `INSERT INTO messages (session_id, role, content) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, sessionID, role, content); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns messages for a session in chronological order.
// When limit > 0 only the most recent messages are returned.
func (r *Repo) ListMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY id DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Rows come back newest-first so the LIMIT trims history from the
	// front; reverse into chronological order for callers.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
