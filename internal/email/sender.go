// Package email renders and delivers the transactional emails sent in
// response to domain events: seminar confirmations, appointment
// confirmations, and new-lead alerts.
package email

import (
	"context"
	"time"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// SeminarConfirmation carries the data for a registration confirmation.
type SeminarConfirmation struct {
	AttendeeName    string
	SeminarTitle    string
	SeminarDate     time.Time
	LocationType    string
	LocationDetails string
	// CheckInQR is the attendee's check-in code, attached as a PNG when
	// present.
	CheckInQR []byte
}

// SeminarReminder carries the data for the day-before reminder.
type SeminarReminder struct {
	AttendeeName    string
	SeminarTitle    string
	SeminarDate     time.Time
	LocationType    string
	LocationDetails string
}

// AppointmentConfirmation carries the data for a booking confirmation.
type AppointmentConfirmation struct {
	Name       string
	StartTime  time.Time
	BookingURL string
}

// LeadAlert carries the data for the internal new-lead notification.
type LeadAlert struct {
	LeadName  string
	LeadEmail string
	LeadScore int
	Tier      string
}

// Sender delivers transactional emails.
type Sender interface {
	SendSeminarConfirmation(ctx context.Context, toEmail string, data SeminarConfirmation) error
	SendSeminarReminder(ctx context.Context, toEmail string, data SeminarReminder) error
	SendAppointmentConfirmation(ctx context.Context, toEmail string, data AppointmentConfirmation) error
	SendLeadAlert(ctx context.Context, toEmail string, data LeadAlert) error
}

// NoopSender is used when email delivery is disabled. All sends succeed
// without doing anything.
type NoopSender struct{}

// Compile-time check that NoopSender implements Sender.
var _ Sender = NoopSender{}

func (NoopSender) SendSeminarConfirmation(context.Context, string, SeminarConfirmation) error {
	return nil
}

func (NoopSender) SendSeminarReminder(context.Context, string, SeminarReminder) error {
	return nil
}

func (NoopSender) SendAppointmentConfirmation(context.Context, string, AppointmentConfirmation) error {
	return nil
}

func (NoopSender) SendLeadAlert(context.Context, string, LeadAlert) error {
	return nil
}
