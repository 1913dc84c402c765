package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"provision_chat_backend/internal/email"
	"provision_chat_backend/internal/events"
	"provision_chat_backend/platform/logger"
)

type testSender struct {
	seminarConfirmations []email.SeminarConfirmation
	appointments         []email.AppointmentConfirmation
	leadAlerts           []email.LeadAlert
	lastRecipient        string
	err                  error
}

func (s *testSender) SendSeminarConfirmation(_ context.Context, toEmail string, data email.SeminarConfirmation) error {
	if s.err != nil {
		return s.err
	}
	s.lastRecipient = toEmail
	s.seminarConfirmations = append(s.seminarConfirmations, data)
	return nil
}

func (s *testSender) SendSeminarReminder(_ context.Context, toEmail string, _ email.SeminarReminder) error {
	if s.err != nil {
		return s.err
	}
	s.lastRecipient = toEmail
	return nil
}

func (s *testSender) SendAppointmentConfirmation(_ context.Context, toEmail string, data email.AppointmentConfirmation) error {
	if s.err != nil {
		return s.err
	}
	s.lastRecipient = toEmail
	s.appointments = append(s.appointments, data)
	return nil
}

func (s *testSender) SendLeadAlert(_ context.Context, toEmail string, data email.LeadAlert) error {
	if s.err != nil {
		return s.err
	}
	s.lastRecipient = toEmail
	s.leadAlerts = append(s.leadAlerts, data)
	return nil
}

type testRegistry struct {
	confirmed []int64
}

func (r *testRegistry) MarkConfirmationSent(_ context.Context, registrationID int64) error {
	r.confirmed = append(r.confirmed, registrationID)
	return nil
}

type testConfig struct {
	disabled   bool
	alertEmail string
}

func (c testConfig) GetEmailEnabled() bool     { return !c.disabled }
func (c testConfig) GetLeadAlertEmail() string { return c.alertEmail }

func TestHandle_SeminarRegisteredSendsConfirmationWithQR(t *testing.T) {
	sender := &testSender{}
	registry := &testRegistry{}
	m := New(registry, sender, testConfig{}, "https://cal.com/provision-brokerage", logger.New("development"))

	err := m.Handle(context.Background(), events.SeminarRegistered{
		BaseEvent:      events.NewBaseEvent(),
		SeminarID:      3,
		RegistrationID: 11,
		SeminarTitle:   "Retirement Planning Strategies",
		SeminarDate:    time.Now().Add(14 * 24 * time.Hour),
		AttendeeName:   "Pat Doe",
		AttendeeEmail:  "pat@example.com",
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(sender.seminarConfirmations) != 1 {
		t.Fatalf("expected one confirmation, got %d", len(sender.seminarConfirmations))
	}
	confirmation := sender.seminarConfirmations[0]
	if sender.lastRecipient != "pat@example.com" {
		t.Fatalf("unexpected recipient %q", sender.lastRecipient)
	}
	if len(confirmation.CheckInQR) == 0 {
		t.Fatal("expected a QR code attachment")
	}
	if len(registry.confirmed) != 1 || registry.confirmed[0] != 11 {
		t.Fatalf("expected registration 11 marked confirmed, got %v", registry.confirmed)
	}
}

func TestHandle_LeadQualifiedAlertsAdvisors(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testConfig{alertEmail: "advisors@provision.example"}, "", logger.New("development"))

	err := m.Handle(context.Background(), events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    7,
		Email:     "pat@example.com",
		Name:      "Pat Doe",
		LeadScore: 92,
		Tier:      "High Value",
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(sender.leadAlerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(sender.leadAlerts))
	}
	if sender.lastRecipient != "advisors@provision.example" {
		t.Fatalf("unexpected recipient %q", sender.lastRecipient)
	}
	if sender.leadAlerts[0].LeadScore != 92 {
		t.Fatalf("unexpected alert payload: %+v", sender.leadAlerts[0])
	}
}

func TestHandle_LeadQualifiedWithoutAlertAddressIsNoop(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testConfig{}, "", logger.New("development"))

	err := m.Handle(context.Background(), events.LeadQualified{BaseEvent: events.NewBaseEvent()})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sender.leadAlerts) != 0 {
		t.Fatal("no alert should be sent without a configured address")
	}
}

func TestHandle_AppointmentBookedSendsConfirmation(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testConfig{}, "https://cal.com/provision-brokerage", logger.New("development"))

	start := time.Now().Add(48 * time.Hour)
	err := m.Handle(context.Background(), events.AppointmentBooked{
		BaseEvent: events.NewBaseEvent(),
		BookingID: "42",
		Name:      "Pat Doe",
		Email:     "pat@example.com",
		StartTime: start,
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(sender.appointments) != 1 {
		t.Fatalf("expected one confirmation, got %d", len(sender.appointments))
	}
	if sender.appointments[0].BookingURL != "https://cal.com/provision-brokerage" {
		t.Fatalf("unexpected booking URL %q", sender.appointments[0].BookingURL)
	}
}

func TestHandle_DisabledEmailSkipsAll(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testConfig{disabled: true, alertEmail: "advisors@provision.example"}, "", logger.New("development"))

	_ = m.Handle(context.Background(), events.LeadQualified{BaseEvent: events.NewBaseEvent()})
	_ = m.Handle(context.Background(), events.AppointmentBooked{BaseEvent: events.NewBaseEvent(), Email: "pat@example.com"})
	_ = m.Handle(context.Background(), events.SeminarRegistered{BaseEvent: events.NewBaseEvent(), AttendeeEmail: "pat@example.com"})

	if len(sender.leadAlerts)+len(sender.appointments)+len(sender.seminarConfirmations) != 0 {
		t.Fatal("disabled email must not send anything")
	}
}

func TestHandle_SenderFailureSurfaces(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	m := New(nil, sender, testConfig{}, "", logger.New("development"))

	err := m.Handle(context.Background(), events.SeminarRegistered{
		BaseEvent:     events.NewBaseEvent(),
		AttendeeEmail: "pat@example.com",
	})
	if err == nil {
		t.Fatal("expected sender failure to surface")
	}
}
