package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"provision_chat_backend/internal/email"
	"provision_chat_backend/internal/events"
	"provision_chat_backend/internal/seminars/repository"
	"provision_chat_backend/platform/apperr"
	"provision_chat_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type fakeStore struct {
	registrations map[int64]repository.Registration
	seminars      map[int64]repository.Seminar
	reminded      []int64
}

func (s *fakeStore) GetRegistration(_ context.Context, id int64) (repository.Registration, error) {
	reg, ok := s.registrations[id]
	if !ok {
		return repository.Registration{}, apperr.NotFound("registration not found")
	}
	return reg, nil
}

func (s *fakeStore) GetSeminar(_ context.Context, id int64) (repository.Seminar, error) {
	seminar, ok := s.seminars[id]
	if !ok {
		return repository.Seminar{}, apperr.NotFound("seminar not found")
	}
	return seminar, nil
}

func (s *fakeStore) MarkReminderSent(_ context.Context, registrationID int64) error {
	s.reminded = append(s.reminded, registrationID)
	return nil
}

type fakeReminderSender struct {
	email.NoopSender
	reminders []email.SeminarReminder
	recipient string
	err       error
}

func (s *fakeReminderSender) SendSeminarReminder(_ context.Context, toEmail string, data email.SeminarReminder) error {
	if s.err != nil {
		return s.err
	}
	s.recipient = toEmail
	s.reminders = append(s.reminders, data)
	return nil
}

func newTestWorker(store *fakeStore, sender email.Sender) *Worker {
	return &Worker{
		store:  store,
		sender: sender,
		log:    logger.New("development"),
	}
}

func reminderTask(t *testing.T, payload SeminarReminderPayload) *asynq.Task {
	t.Helper()
	task, err := NewSeminarReminderTask(payload)
	if err != nil {
		t.Fatalf("NewSeminarReminderTask returned error: %v", err)
	}
	return task
}

func TestHandleSeminarReminder_SendsAndMarks(t *testing.T) {
	seminarDate := time.Now().Add(26 * time.Hour)
	store := &fakeStore{
		registrations: map[int64]repository.Registration{
			11: {ID: 11, SeminarID: 3, AttendanceStatus: repository.AttendanceRegistered},
		},
		seminars: map[int64]repository.Seminar{
			3: {
				ID:              3,
				Title:           "Retirement Planning Strategies",
				Date:            seminarDate,
				LocationType:    "virtual",
				LocationDetails: "Zoom link to follow",
				Status:          repository.StatusScheduled,
			},
		},
	}
	sender := &fakeReminderSender{}
	w := newTestWorker(store, sender)

	err := w.handleSeminarReminder(context.Background(), reminderTask(t, SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		SeminarDate:    seminarDate,
		AttendeeName:   "Pat Doe",
		AttendeeEmail:  "pat@example.com",
	}))
	if err != nil {
		t.Fatalf("handleSeminarReminder returned error: %v", err)
	}

	if len(sender.reminders) != 1 {
		t.Fatalf("expected one reminder, got %d", len(sender.reminders))
	}
	if sender.recipient != "pat@example.com" {
		t.Fatalf("unexpected recipient %q", sender.recipient)
	}
	if sender.reminders[0].SeminarTitle != "Retirement Planning Strategies" {
		t.Fatalf("unexpected reminder payload: %+v", sender.reminders[0])
	}
	if len(store.reminded) != 1 || store.reminded[0] != 11 {
		t.Fatalf("expected registration 11 marked reminded, got %v", store.reminded)
	}
}

func TestHandleSeminarReminder_SkipsAlreadyReminded(t *testing.T) {
	store := &fakeStore{
		registrations: map[int64]repository.Registration{
			11: {ID: 11, SeminarID: 3, ReminderSent: true, AttendanceStatus: repository.AttendanceRegistered},
		},
	}
	sender := &fakeReminderSender{}
	w := newTestWorker(store, sender)

	err := w.handleSeminarReminder(context.Background(), reminderTask(t, SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		AttendeeEmail:  "pat@example.com",
	}))
	if err != nil {
		t.Fatalf("handleSeminarReminder returned error: %v", err)
	}
	if len(sender.reminders) != 0 {
		t.Fatal("no reminder should be sent twice")
	}
}

func TestHandleSeminarReminder_SkipsCancelledSeminar(t *testing.T) {
	store := &fakeStore{
		registrations: map[int64]repository.Registration{
			11: {ID: 11, SeminarID: 3, AttendanceStatus: repository.AttendanceRegistered},
		},
		seminars: map[int64]repository.Seminar{
			3: {ID: 3, Status: repository.StatusCancelled},
		},
	}
	sender := &fakeReminderSender{}
	w := newTestWorker(store, sender)

	err := w.handleSeminarReminder(context.Background(), reminderTask(t, SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		AttendeeEmail:  "pat@example.com",
	}))
	if err != nil {
		t.Fatalf("handleSeminarReminder returned error: %v", err)
	}
	if len(sender.reminders) != 0 {
		t.Fatal("no reminder should be sent for a cancelled seminar")
	}
}

func TestHandleSeminarReminder_MissingRegistrationIsDropped(t *testing.T) {
	store := &fakeStore{registrations: map[int64]repository.Registration{}}
	sender := &fakeReminderSender{}
	w := newTestWorker(store, sender)

	err := w.handleSeminarReminder(context.Background(), reminderTask(t, SeminarReminderPayload{
		RegistrationID: 404,
		SeminarID:      3,
		AttendeeEmail:  "pat@example.com",
	}))
	if err != nil {
		t.Fatalf("missing registration should not retry, got: %v", err)
	}
}

func TestHandleSeminarReminder_SenderFailureRetries(t *testing.T) {
	store := &fakeStore{
		registrations: map[int64]repository.Registration{
			11: {ID: 11, SeminarID: 3, AttendanceStatus: repository.AttendanceRegistered},
		},
		seminars: map[int64]repository.Seminar{
			3: {ID: 3, Status: repository.StatusScheduled},
		},
	}
	sender := &fakeReminderSender{err: errors.New("smtp down")}
	w := newTestWorker(store, sender)

	err := w.handleSeminarReminder(context.Background(), reminderTask(t, SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		AttendeeEmail:  "pat@example.com",
	}))
	if err == nil {
		t.Fatal("expected sender failure to surface for retry")
	}
	if len(store.reminded) != 0 {
		t.Fatal("failed send must not mark the reminder sent")
	}
}

type fakeScheduler struct {
	payloads []SeminarReminderPayload
}

func (s *fakeScheduler) ScheduleSeminarReminder(_ context.Context, payload SeminarReminderPayload) error {
	s.payloads = append(s.payloads, payload)
	return nil
}

func eventFixture(attendeeEmail string) events.SeminarRegistered {
	return events.SeminarRegistered{
		BaseEvent:      events.NewBaseEvent(),
		SeminarID:      3,
		RegistrationID: 11,
		SeminarTitle:   "Retirement Planning Strategies",
		SeminarDate:    time.Now().Add(72 * time.Hour),
		AttendeeName:   "Pat Doe",
		AttendeeEmail:  attendeeEmail,
	}
}

func TestModule_SchedulesOnRegistration(t *testing.T) {
	sched := &fakeScheduler{}
	m := NewModule(sched, logger.New("development"))

	err := m.Handle(context.Background(), eventFixture("pat@example.com"))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sched.payloads) != 1 {
		t.Fatalf("expected one scheduled reminder, got %d", len(sched.payloads))
	}
	if sched.payloads[0].RegistrationID != 11 {
		t.Fatalf("unexpected payload: %+v", sched.payloads[0])
	}
}

func TestModule_SkipsRegistrationWithoutEmail(t *testing.T) {
	sched := &fakeScheduler{}
	m := NewModule(sched, logger.New("development"))

	err := m.Handle(context.Background(), eventFixture(""))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sched.payloads) != 0 {
		t.Fatal("no reminder should be scheduled without an email address")
	}
}
