// Package transport defines the request/response DTOs for the seminars API.
package transport

import (
	"time"

	"provision_chat_backend/internal/seminars/repository"
)

// CreateSeminarRequest is the admin payload for scheduling a seminar.
type CreateSeminarRequest struct {
	Title           string    `json:"title" validate:"required,max=300"`
	Description     string    `json:"description" validate:"omitempty,max=5000"`
	Topic           string    `json:"topic" validate:"omitempty,max=100"`
	Date            time.Time `json:"date" validate:"required"`
	DurationMinutes int       `json:"duration" validate:"omitempty,min=15,max=480"`
	LocationType    string    `json:"location_type" validate:"omitempty,oneof=virtual physical hybrid"`
	LocationDetails string    `json:"location_details" validate:"omitempty,max=1000"`
	Capacity        int       `json:"capacity" validate:"omitempty,min=1,max=1000"`
}

// ListSeminarsRequest filters the public upcoming listing.
type ListSeminarsRequest struct {
	Topic string `form:"topic" validate:"omitempty,max=100"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// SeminarDTO is a seminar plus its derived seat availability.
type SeminarDTO struct {
	repository.Seminar
	AvailableSeats int  `json:"available_seats"`
	IsFull         bool `json:"is_full"`
}

// NewSeminarDTO builds the response shape for a seminar.
func NewSeminarDTO(seminar repository.Seminar) SeminarDTO {
	return SeminarDTO{
		Seminar:        seminar,
		AvailableSeats: seminar.AvailableSeats(),
		IsFull:         seminar.IsFull(),
	}
}

// ListSeminarsResponse is the upcoming seminars payload.
type ListSeminarsResponse struct {
	Seminars []SeminarDTO `json:"seminars"`
	Count    int          `json:"count"`
}

// RegisterRequest is one RSVP. Either a lead ID or guest name+email must
// be provided.
type RegisterRequest struct {
	LeadID             *int64 `json:"lead_id" validate:"omitempty,min=1"`
	GuestName          string `json:"guest_name" validate:"omitempty,max=200"`
	GuestEmail         string `json:"guest_email" validate:"omitempty,email"`
	GuestPhone         string `json:"guest_phone" validate:"omitempty,max=32"`
	ReminderPreference string `json:"reminder_preference" validate:"omitempty,oneof=email sms whatsapp all"`
}

// FeedbackRequest records an attendee's post-seminar feedback.
type FeedbackRequest struct {
	Feedback         string `json:"feedback" validate:"omitempty,max=2000"`
	Rating           int    `json:"rating" validate:"required,min=1,max=5"`
	FollowUpInterest bool   `json:"follow_up_interest"`
}

// StatsResponse summarizes one seminar's outcomes.
type StatsResponse struct {
	SeminarID      int64   `json:"seminar_id"`
	Title          string  `json:"title"`
	Registered     int     `json:"registered"`
	Capacity       int     `json:"capacity"`
	Attended       int     `json:"attended"`
	NoShows        int     `json:"no_shows"`
	AttendanceRate float64 `json:"attendance_rate"`
	FollowUpLeads  int     `json:"follow_up_leads"`
	AverageRating  float64 `json:"average_rating"`
	IsFull         bool    `json:"is_full"`
}
