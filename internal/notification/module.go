// Package notification sends emails in response to domain events. It
// subscribes to the event bus and inverts the dependency: domain modules
// never talk to email providers directly.
package notification

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"provision_chat_backend/internal/email"
	"provision_chat_backend/internal/events"
	"provision_chat_backend/platform/logger"
)

// SeminarRegistry flags delivered confirmations on registrations.
type SeminarRegistry interface {
	MarkConfirmationSent(ctx context.Context, registrationID int64) error
}

// Config is the slice of application config the module needs.
type Config interface {
	GetEmailEnabled() bool
	GetLeadAlertEmail() string
}

// Module wires event subscriptions to the email sender.
type Module struct {
	registry   SeminarRegistry
	sender     email.Sender
	cfg        Config
	bookingURL string
	log        *logger.Logger
}

// New creates the notification module. bookingURL is the public
// self-serve booking page included in appointment confirmations.
func New(registry SeminarRegistry, sender email.Sender, cfg Config, bookingURL string, log *logger.Logger) *Module {
	return &Module{
		registry:   registry,
		sender:     sender,
		cfg:        cfg,
		bookingURL: bookingURL,
		log:        log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterHandlers subscribes to the domain events that trigger emails.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadQualified{}.EventName(), m)
	bus.Subscribe(events.AppointmentBooked{}.EventName(), m)
	bus.Subscribe(events.SeminarRegistered{}.EventName(), m)
}

// Handle routes events to the appropriate email.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadQualified:
		return m.handleLeadQualified(ctx, e)
	case events.AppointmentBooked:
		return m.handleAppointmentBooked(ctx, e)
	case events.SeminarRegistered:
		return m.handleSeminarRegistered(ctx, e)
	}
	return nil
}

func (m *Module) handleLeadQualified(ctx context.Context, event events.LeadQualified) error {
	alertEmail := m.cfg.GetLeadAlertEmail()
	if !m.cfg.GetEmailEnabled() || alertEmail == "" {
		return nil
	}

	err := m.sender.SendLeadAlert(ctx, alertEmail, email.LeadAlert{
		LeadName:  event.Name,
		LeadEmail: event.Email,
		LeadScore: event.LeadScore,
		Tier:      event.Tier,
	})
	if err != nil {
		m.log.CollaboratorError("smtp", "send_lead_alert", err)
		return err
	}
	return nil
}

func (m *Module) handleAppointmentBooked(ctx context.Context, event events.AppointmentBooked) error {
	if !m.cfg.GetEmailEnabled() || event.Email == "" {
		return nil
	}

	err := m.sender.SendAppointmentConfirmation(ctx, event.Email, email.AppointmentConfirmation{
		Name:       event.Name,
		StartTime:  event.StartTime,
		BookingURL: m.bookingURL,
	})
	if err != nil {
		m.log.CollaboratorError("smtp", "send_appointment_confirmation", err)
		return err
	}
	return nil
}

func (m *Module) handleSeminarRegistered(ctx context.Context, event events.SeminarRegistered) error {
	if !m.cfg.GetEmailEnabled() || event.AttendeeEmail == "" {
		return nil
	}

	// A broken QR encoder should not block the confirmation itself.
	checkInQR, err := qrcode.Encode(checkInPayload(event), qrcode.Medium, 256)
	if err != nil {
		m.log.CollaboratorError("qrcode", "encode_check_in", err)
		checkInQR = nil
	}

	err = m.sender.SendSeminarConfirmation(ctx, event.AttendeeEmail, email.SeminarConfirmation{
		AttendeeName:    event.AttendeeName,
		SeminarTitle:    event.SeminarTitle,
		SeminarDate:     event.SeminarDate,
		LocationType:    event.LocationType,
		LocationDetails: event.LocationDetails,
		CheckInQR:       checkInQR,
	})
	if err != nil {
		m.log.CollaboratorError("smtp", "send_seminar_confirmation", err)
		return err
	}

	if m.registry != nil {
		if err := m.registry.MarkConfirmationSent(ctx, event.RegistrationID); err != nil {
			m.log.DatabaseError("mark_confirmation_sent", err)
		}
	}
	return nil
}

func checkInPayload(event events.SeminarRegistered) string {
	return fmt.Sprintf("provision:seminar:%d:registration:%d", event.SeminarID, event.RegistrationID)
}
