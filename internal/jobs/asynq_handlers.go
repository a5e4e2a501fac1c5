package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"subdesk/internal/common"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Task type definitions
const (
	TypeReminderSend   = "reminder:send"
	TypeExportSubs     = "export:subscriptions"
	ReminderQueue      = "reminders"
	DefaultReminderTry = 5
)

// ReminderSendPayload defines the payload for reminder delivery tasks
type ReminderSendPayload struct {
	ReminderID uuid.UUID `json:"reminder_id"`
}

// NewReminderSendTask creates a delivery task. The reminder id doubles as the
// task id so a reminder is queued at most once at a time.
func NewReminderSendTask(reminderID uuid.UUID, maxRetry int) (*asynq.Task, error) {
	data, err := json.Marshal(ReminderSendPayload{ReminderID: reminderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReminderSend, data,
		asynq.TaskID(reminderID.String()),
		asynq.Queue(ReminderQueue),
		asynq.MaxRetry(maxRetry),
	), nil
}

// HandleReminderSend delivers one reminder. The last permitted attempt marks
// the reminder failed when delivery still does not succeed.
func (j *ReminderJobs) HandleReminderSend(ctx context.Context, t *asynq.Task) error {
	var payload ReminderSendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	final := isFinalAttempt(ctx)
	err := j.reminders.Deliver(ctx, payload.ReminderID, final)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		log.Warn().Str("reminder_id", payload.ReminderID.String()).Msg("reminder deleted before delivery")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}

// isFinalAttempt reports whether the running task has no retries left.
// Outside a worker every call is treated as the only attempt.
func isFinalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}

// NewServeMux routes worker tasks to their handlers.
func NewServeMux(reminderJobs *ReminderJobs, exportJobs *ExportJobs) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, reminderJobs.HandleReminderSend)
	if exportJobs != nil {
		mux.HandleFunc(TypeExportSubs, exportJobs.HandleExportSubscriptions)
	}
	return mux
}
