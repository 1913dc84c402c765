package scheduler

import (
	"context"
	"fmt"

	"provision_chat_backend/internal/email"
	"provision_chat_backend/internal/seminars/repository"
	"provision_chat_backend/platform/apperr"
	"provision_chat_backend/platform/config"
	"provision_chat_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationStore is the slice of seminar persistence the worker
// needs to process a reminder.
type RegistrationStore interface {
	GetRegistration(ctx context.Context, id int64) (repository.Registration, error)
	GetSeminar(ctx context.Context, id int64) (repository.Seminar, error)
	MarkReminderSent(ctx context.Context, registrationID int64) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	store  RegistrationStore
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.RedisConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		store:  repository.New(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskSeminarReminder, w.handleSeminarReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleSeminarReminder sends the reminder unless the registration was
// cancelled, the seminar was cancelled, or a reminder already went out.
// Seminar details are re-read at send time so rescheduled seminars show
// the current date and location.
func (w *Worker) handleSeminarReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSeminarReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	reg, err := w.store.GetRegistration(ctx, payload.RegistrationID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if reg.ReminderSent || reg.AttendanceStatus == repository.AttendanceCancelled {
		return nil
	}

	seminar, err := w.store.GetSeminar(ctx, payload.SeminarID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if seminar.Status == repository.StatusCancelled {
		return nil
	}

	err = w.sender.SendSeminarReminder(ctx, payload.AttendeeEmail, email.SeminarReminder{
		AttendeeName:    payload.AttendeeName,
		SeminarTitle:    seminar.Title,
		SeminarDate:     seminar.Date,
		LocationType:    seminar.LocationType,
		LocationDetails: seminar.LocationDetails,
	})
	if err != nil {
		w.log.CollaboratorError("smtp", "send_seminar_reminder", err)
		return err
	}

	if err := w.store.MarkReminderSent(ctx, payload.RegistrationID); err != nil {
		w.log.DatabaseError("mark_reminder_sent", err)
	}
	return nil
}
