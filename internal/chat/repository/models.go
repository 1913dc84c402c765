// Package repository persists conversations and their message transcripts.
package repository

import (
	"context"
	"time"

	"provision_chat_backend/internal/chat/qualification"
)

// Conversation is one chat session and its qualification state.
type Conversation struct {
	SessionID string
	Channel   string
	LeadID    *int64
	State     qualification.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single stored conversation turn.
type Message struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Repository defines persistence operations for conversations.
type Repository interface {
	// GetConversation returns the conversation for a session, or
	// apperr.NotFound when the session is unknown.
	GetConversation(ctx context.Context, sessionID string) (Conversation, error)
	// CreateConversation inserts a fresh conversation with zero progress.
	CreateConversation(ctx context.Context, sessionID, channel string) (Conversation, error)
	// SaveState overwrites the qualification state for a session.
	SaveState(ctx context.Context, sessionID string, state qualification.State) error
	// LinkLead attaches a lead record to the conversation.
	LinkLead(ctx context.Context, sessionID string, leadID int64) error
	// AppendMessage stores one conversation turn.
	AppendMessage(ctx context.Context, sessionID, role, content string) error
	// ListMessages returns the most recent messages in chronological
	// order. limit <= 0 returns the full transcript.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}
