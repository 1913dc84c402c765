// Package transport defines the request/response DTOs for the chat API.
package transport

import (
	"time"

	"provision_chat_backend/internal/chat/qualification"
)

// Next-action tags returned on every chat response.
const (
	ActionOfferAppointment      = "offer_appointment"
	ActionContinueQualification = "continue_qualification"
)

// ProcessMessageRequest is the inbound payload for POST /api/v1/chat.
// SessionID is optional; a new session is created when it is absent.
type ProcessMessageRequest struct {
	Message     string `json:"message" validate:"required,min=1,max=2000"`
	SessionID   string `json:"session_id" validate:"omitempty,uuid"`
	Channel     string `json:"channel" validate:"omitempty,oneof=web sms whatsapp facebook"`
	UserEmail   string `json:"user_email" validate:"omitempty,email"`
	UserName    string `json:"user_name" validate:"omitempty,max=120"`
	PageContext string `json:"page_context" validate:"omitempty,max=64"`
}

// ChatResponse is the envelope returned for every processed message. It is
// always well-formed, even when a collaborator failed mid-turn.
type ChatResponse struct {
	SessionID             string                  `json:"session_id"`
	Message               string                  `json:"message"`
	QualificationProgress int                     `json:"qualification_progress"`
	TotalQuestions        int                     `json:"total_questions"`
	IsQualified           bool                    `json:"is_qualified"`
	LeadScore             int                     `json:"lead_score"`
	NextAction            *string                 `json:"next_action"`
	NextQuestion          *qualification.Question `json:"next_question,omitempty"`
	BookingURL            string                  `json:"booking_url,omitempty"`
	Intent                string                  `json:"intent,omitempty"`
	Suggestions           []string                `json:"suggestions,omitempty"`
	RequiresHuman         bool                    `json:"requires_human,omitempty"`
}

// BookAppointmentRequest is the inbound payload for POST /api/v1/appointments.
type BookAppointmentRequest struct {
	SessionID string    `json:"session_id" validate:"required,uuid"`
	Name      string    `json:"name" validate:"required,max=120"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone" validate:"required,max=32"`
	StartTime time.Time `json:"start_time" validate:"required"`
	Notes     string    `json:"notes" validate:"omitempty,max=1000"`
}

// MessageDTO is a single conversation turn.
type MessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse is the full transcript plus qualification status for one
// session.
type HistoryResponse struct {
	SessionID             string       `json:"session_id"`
	Channel               string       `json:"channel"`
	QualificationProgress int          `json:"qualification_progress"`
	TotalQuestions        int          `json:"total_questions"`
	IsQualified           bool         `json:"is_qualified"`
	LeadScore             int          `json:"lead_score"`
	AppointmentBooked     bool         `json:"appointment_booked"`
	Messages              []MessageDTO `json:"messages"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}
