package jobs

import (
	"context"
	"errors"
	"time"

	"subdesk/internal/metrics"
	"subdesk/internal/models"
	"subdesk/internal/services"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// ReminderRunner is the part of the reminder service the jobs drive.
type ReminderRunner interface {
	Generate(ctx context.Context, reference time.Time) (*services.GenerateResult, error)
	ListPending(ctx context.Context, reference time.Time) ([]*models.ReminderDetail, error)
	Deliver(ctx context.Context, id uuid.UUID, final bool) error
}

// LapsedProcessor renews or expires subscriptions past their end date.
type LapsedProcessor interface {
	ProcessLapsed(ctx context.Context, reference time.Time) (*services.LapsedResult, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DeliveryResult summarises a synchronous delivery pass.
type DeliveryResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type ReminderJobs struct {
	reminders     ReminderRunner
	subscriptions LapsedProcessor
	enqueuer      TaskEnqueuer
	maxRetry      int
	now           func() time.Time
}

// NewReminderJobs wires the scheduled reminder work. enqueuer may be nil when
// reminders are only delivered synchronously.
func NewReminderJobs(reminders ReminderRunner, subscriptions LapsedProcessor, enqueuer TaskEnqueuer, maxRetry int) *ReminderJobs {
	if maxRetry < 0 {
		maxRetry = DefaultReminderTry
	}
	return &ReminderJobs{
		reminders:     reminders,
		subscriptions: subscriptions,
		enqueuer:      enqueuer,
		maxRetry:      maxRetry,
		now:           time.Now,
	}
}

// GenerateReminders creates today's due reminders.
func (j *ReminderJobs) GenerateReminders(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveJob("generate-reminders", start, err) }()

	_, err = j.reminders.Generate(ctx, j.now())
	return err
}

// EnqueueDue queues a delivery task for every pending reminder that is due.
// Reminders that already have a task queued are skipped.
func (j *ReminderJobs) EnqueueDue(ctx context.Context) (queued int, err error) {
	start := time.Now()
	defer func() { metrics.ObserveJob("enqueue-due-reminders", start, err) }()

	if j.enqueuer == nil {
		return 0, errors.New("no task queue configured")
	}
	due, err := j.reminders.ListPending(ctx, j.now())
	if err != nil {
		return 0, err
	}

	for _, r := range due {
		task, err := NewReminderSendTask(r.ID, j.maxRetry)
		if err != nil {
			return queued, err
		}
		if _, err := j.enqueuer.EnqueueContext(ctx, task); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
				continue
			}
			return queued, err
		}
		queued++
	}
	log.Info().Int("due", len(due)).Int("queued", queued).Msg("due reminders enqueued")
	return queued, nil
}

// DeliverDue sends every due reminder in-process, one attempt each. A failed
// send marks the reminder failed and the pass moves on.
func (j *ReminderJobs) DeliverDue(ctx context.Context) (result *DeliveryResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveJob("deliver-due-reminders", start, err) }()

	due, err := j.reminders.ListPending(ctx, j.now())
	if err != nil {
		return nil, err
	}
	result = &DeliveryResult{}
	for _, r := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := j.reminders.Deliver(ctx, r.ID, true); err != nil {
			log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder delivery failed")
			result.Failed++
			continue
		}
		result.Sent++
	}
	return result, nil
}

// ProcessLapsed renews auto-renewing subscriptions that ended and expires
// the rest.
func (j *ReminderJobs) ProcessLapsed(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveJob("process-lapsed-subscriptions", start, err) }()

	result, err := j.subscriptions.ProcessLapsed(ctx, j.now())
	if err != nil {
		return err
	}
	log.Info().
		Int("renewed", result.Renewed).
		Int("expired", result.Expired).
		Int("failed", result.Failed).
		Msg("lapsed subscriptions processed")
	return nil
}
