package service

import (
	"context"
	"time"

	"provision_chat_backend/internal/calendar"
	"provision_chat_backend/internal/chat/ai"
	"provision_chat_backend/internal/chat/qualification"
)

// Extractor pulls qualification answers out of a free-form user message.
// Satisfied by ai.Extractor.
type Extractor interface {
	Extract(ctx context.Context, message string) (qualification.Answers, error)
}

// ReplyGenerator produces the assistant's conversational reply.
// Satisfied by ai.Generator.
type ReplyGenerator interface {
	Generate(ctx context.Context, userMessage string, history []ai.Message, rc ai.ReplyContext) (string, error)
}

// BookingClient books consultations and reports availability.
// Satisfied by calendar.Client.
type BookingClient interface {
	CreateBooking(ctx context.Context, booking calendar.BookingRequest) *calendar.BookingResult
	GetAvailability(ctx context.Context, window time.Duration) (*calendar.Availability, error)
	BookingURL() string
}

// QualifiedLead carries everything the lead store needs to upsert a lead
// once the visitor qualifies.
type QualifiedLead struct {
	Name    string
	Email   string
	Source  string
	Answers qualification.Answers
	Score   int
	Tier    string
}

// LeadStore persists qualified leads, keyed by email. Satisfied by an
// adapter over the leads module.
type LeadStore interface {
	UpsertQualified(ctx context.Context, lead QualifiedLead) (int64, error)
}
