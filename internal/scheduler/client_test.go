package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testRedisConfig struct {
	url string
}

func (c testRedisConfig) GetRedisURL() string { return c.url }

func newTestClient(t *testing.T) (*Client, *asynq.Inspector) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient(testRedisConfig{url: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })

	return client, inspector
}

func TestScheduleSeminarReminder_EnqueuesDayBefore(t *testing.T) {
	client, inspector := newTestClient(t)

	seminarDate := time.Now().Add(72 * time.Hour)
	err := client.ScheduleSeminarReminder(context.Background(), SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		SeminarDate:    seminarDate,
		AttendeeName:   "Pat Doe",
		AttendeeEmail:  "pat@example.com",
	})
	if err != nil {
		t.Fatalf("ScheduleSeminarReminder returned error: %v", err)
	}

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("ListScheduledTasks returned error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskSeminarReminder {
		t.Fatalf("unexpected task type %q", tasks[0].Type)
	}

	var payload SeminarReminderPayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.RegistrationID != 11 || payload.AttendeeEmail != "pat@example.com" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	wantRunAt := seminarDate.Add(-reminderLead)
	if diff := tasks[0].NextProcessAt.Sub(wantRunAt); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("task scheduled at %v, want about %v", tasks[0].NextProcessAt, wantRunAt)
	}
}

func TestScheduleSeminarReminder_SkipsImminentSeminar(t *testing.T) {
	client, inspector := newTestClient(t)

	err := client.ScheduleSeminarReminder(context.Background(), SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		SeminarDate:    time.Now().Add(2 * time.Hour),
		AttendeeEmail:  "pat@example.com",
	})
	if err != nil {
		t.Fatalf("ScheduleSeminarReminder returned error: %v", err)
	}

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("ListScheduledTasks returned error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks for a seminar starting within 24h, got %d", len(tasks))
	}
}

func TestScheduleSeminarReminder_DuplicateRegistrationEnqueuesOnce(t *testing.T) {
	client, inspector := newTestClient(t)

	payload := SeminarReminderPayload{
		RegistrationID: 11,
		SeminarID:      3,
		SeminarDate:    time.Now().Add(72 * time.Hour),
		AttendeeEmail:  "pat@example.com",
	}
	for i := 0; i < 2; i++ {
		if err := client.ScheduleSeminarReminder(context.Background(), payload); err != nil {
			t.Fatalf("ScheduleSeminarReminder returned error: %v", err)
		}
	}

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("ListScheduledTasks returned error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one task after duplicate schedule, got %d", len(tasks))
	}
}
