package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provision_chat_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// reminderLead is how far before the seminar start the reminder fires.
const reminderLead = 24 * time.Hour

type Client struct {
	client *asynq.Client
	queue  string
}

// ReminderScheduler schedules the day-before reminder for one
// registration. Implemented by Client; faked in tests.
type ReminderScheduler interface {
	ScheduleSeminarReminder(ctx context.Context, payload SeminarReminderPayload) error
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  "default",
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleSeminarReminder enqueues the reminder to run 24 hours before
// the seminar starts. Seminars starting within 24 hours get no
// reminder, and re-registering the same attendee does not enqueue a
// second task.
func (c *Client) ScheduleSeminarReminder(ctx context.Context, payload SeminarReminderPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	runAt := payload.SeminarDate.Add(-reminderLead)
	if !runAt.After(time.Now()) {
		return nil
	}

	task, err := NewSeminarReminderTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.MaxRetry(3),
		asynq.TaskID(fmt.Sprintf("seminar-reminder-%d", payload.RegistrationID)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
