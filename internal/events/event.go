// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"provision_chat_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a lead record is created for a new email.
type LeadCreated struct {
	BaseEvent
	LeadID int64  `json:"leadId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadQualified is published when a lead completes or fast-tracks the
// qualification flow and receives a score.
type LeadQualified struct {
	BaseEvent
	LeadID    int64  `json:"leadId"`
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	LeadScore int    `json:"leadScore"`
	Tier      string `json:"tier"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// =============================================================================
// Appointments Domain Events
// =============================================================================

// AppointmentBooked is published when a calendar booking succeeds.
type AppointmentBooked struct {
	BaseEvent
	SessionID string    `json:"sessionId,omitempty"`
	LeadID    *int64    `json:"leadId,omitempty"`
	BookingID string    `json:"bookingId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	StartTime time.Time `json:"startTime"`
}

func (e AppointmentBooked) EventName() string { return "appointments.booked" }

// =============================================================================
// Seminars Domain Events
// =============================================================================

// SeminarRegistered is published when an attendee registers for a seminar.
type SeminarRegistered struct {
	BaseEvent
	SeminarID       int64     `json:"seminarId"`
	RegistrationID  int64     `json:"registrationId"`
	SeminarTitle    string    `json:"seminarTitle"`
	SeminarDate     time.Time `json:"seminarDate"`
	LocationType    string    `json:"locationType,omitempty"`
	LocationDetails string    `json:"locationDetails,omitempty"`
	AttendeeName    string    `json:"attendeeName"`
	AttendeeEmail   string    `json:"attendeeEmail"`
	ReminderPref    string    `json:"reminderPreference"`
}

func (e SeminarRegistered) EventName() string { return "seminars.registration.created" }
