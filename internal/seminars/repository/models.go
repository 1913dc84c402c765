// Package repository persists seminars and their registrations.
package repository

import (
	"context"
	"time"
)

// Seminar statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Attendance statuses for a registration.
const (
	AttendanceRegistered = "registered"
	AttendanceAttended   = "attended"
	AttendanceNoShow     = "no_show"
	AttendanceCancelled  = "cancelled"
)

// Seminar is one educational event, virtual or in person.
type Seminar struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Topic           string     `json:"topic,omitempty"`
	Date            time.Time  `json:"date"`
	DurationMinutes int        `json:"duration"`
	LocationType    string     `json:"location_type"`
	LocationDetails string     `json:"location_details,omitempty"`
	Capacity        int        `json:"capacity"`
	RegisteredCount int        `json:"registered_count"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// IsFull reports whether the seminar is at capacity.
func (s Seminar) IsFull() bool {
	return s.RegisteredCount >= s.Capacity
}

// AvailableSeats returns the remaining capacity.
func (s Seminar) AvailableSeats() int {
	if seats := s.Capacity - s.RegisteredCount; seats > 0 {
		return seats
	}
	return 0
}

// Registration is one attendee RSVP, either a known lead or a guest.
type Registration struct {
	ID                 int64      `json:"id"`
	SeminarID          int64      `json:"seminar_id"`
	LeadID             *int64     `json:"lead_id,omitempty"`
	GuestName          string     `json:"guest_name"`
	GuestEmail         string     `json:"guest_email"`
	GuestPhone         string     `json:"guest_phone,omitempty"`
	ReminderPreference string     `json:"reminder_preference"`
	ConfirmationSent   bool       `json:"confirmation_sent"`
	ReminderSent       bool       `json:"reminder_sent"`
	AttendanceStatus   string     `json:"attendance_status"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty"`
	Feedback           string     `json:"feedback,omitempty"`
	Rating             *int       `json:"rating,omitempty"`
	FollowUpInterest   bool       `json:"follow_up_interest"`
	CreatedAt          time.Time  `json:"created_at"`
}

// CreateSeminarParams carries the fields for a new seminar.
type CreateSeminarParams struct {
	Title           string
	Description     string
	Topic           string
	Date            time.Time
	DurationMinutes int
	LocationType    string
	LocationDetails string
	Capacity        int
}

// RegisterParams carries one RSVP.
type RegisterParams struct {
	SeminarID          int64
	LeadID             *int64
	GuestName          string
	GuestEmail         string
	GuestPhone         string
	ReminderPreference string
}

// Repository defines persistence operations for seminars.
type Repository interface {
	CreateSeminar(ctx context.Context, params CreateSeminarParams) (Seminar, error)
	GetSeminar(ctx context.Context, id int64) (Seminar, error)
	// ListUpcoming returns scheduled seminars with a future date,
	// soonest first.
	ListUpcoming(ctx context.Context, topic string, limit int) ([]Seminar, error)
	// Register inserts an RSVP and bumps the seat count atomically.
	// Returns apperr.Conflict when the seminar is full or the attendee
	// is already registered.
	Register(ctx context.Context, params RegisterParams) (Registration, error)
	GetRegistration(ctx context.Context, id int64) (Registration, error)
	ListRegistrations(ctx context.Context, seminarID int64) ([]Registration, error)
	// SetAttendance updates the attendance status; check-in also stamps
	// the check-in time.
	SetAttendance(ctx context.Context, registrationID int64, status string) (Registration, error)
	AddFeedback(ctx context.Context, registrationID int64, feedback string, rating int, followUp bool) (Registration, error)
	// FollowUps returns attended registrations that asked for follow-up.
	// seminarID 0 means all seminars.
	FollowUps(ctx context.Context, seminarID int64) ([]Registration, error)
	MarkConfirmationSent(ctx context.Context, registrationID int64) error
	MarkReminderSent(ctx context.Context, registrationID int64) error
}
