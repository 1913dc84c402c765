package scheduler

import (
	"context"

	"provision_chat_backend/internal/events"
	"provision_chat_backend/platform/logger"
)

// Module listens for registrations and schedules their reminders.
type Module struct {
	scheduler ReminderScheduler
	log       *logger.Logger
}

func NewModule(scheduler ReminderScheduler, log *logger.Logger) *Module {
	return &Module{scheduler: scheduler, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scheduler"
}

// RegisterHandlers subscribes to the events that create reminder jobs.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.SeminarRegistered{}.EventName(), m)
}

// Handle schedules a reminder for each new registration. Attendees
// without an email address are skipped.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SeminarRegistered)
	if !ok {
		return nil
	}
	if e.AttendeeEmail == "" {
		return nil
	}

	err := m.scheduler.ScheduleSeminarReminder(ctx, SeminarReminderPayload{
		RegistrationID: e.RegistrationID,
		SeminarID:      e.SeminarID,
		SeminarDate:    e.SeminarDate,
		AttendeeName:   e.AttendeeName,
		AttendeeEmail:  e.AttendeeEmail,
	})
	if err != nil {
		m.log.CollaboratorError("redis", "schedule_seminar_reminder", err)
		return err
	}
	return nil
}
