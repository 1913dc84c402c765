// Package scheduler runs delayed background jobs over Redis via asynq.
// The only job today is the day-before seminar reminder email.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskSeminarReminder = "seminars.reminder"

type SeminarReminderPayload struct {
	RegistrationID int64     `json:"registrationId"`
	SeminarID      int64     `json:"seminarId"`
	SeminarDate    time.Time `json:"seminarDate"`
	AttendeeName   string    `json:"attendeeName"`
	AttendeeEmail  string    `json:"attendeeEmail"`
}

func NewSeminarReminderTask(payload SeminarReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSeminarReminder, data), nil
}

func ParseSeminarReminderPayload(task *asynq.Task) (SeminarReminderPayload, error) {
	var payload SeminarReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SeminarReminderPayload{}, err
	}
	return payload, nil
}
