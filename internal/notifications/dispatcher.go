package notifications

import (
	"context"
	"fmt"

	"subdesk/internal/metrics"
	"subdesk/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("reminder_id", msg.ReminderID.String()).
		Str("type", string(msg.Type)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("reminder delivery (log only)")
	return nil
}

// Dispatcher renders reminders and routes them to the sender for their
// type, throttled by a shared rate limiter.
type Dispatcher struct {
	renderer *Renderer
	senders  map[models.ReminderType]Sender
	limiter  *rate.Limiter
}

// NewDispatcher creates a dispatcher allowing perSecond sends with the given
// burst. A non-positive perSecond disables throttling.
func NewDispatcher(renderer *Renderer, senders map[models.ReminderType]Sender, perSecond float64, burst int) *Dispatcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Dispatcher{
		renderer: renderer,
		senders:  senders,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Dispatch delivers one reminder. It blocks until the limiter admits it or
// ctx is done.
func (d *Dispatcher) Dispatch(ctx context.Context, reminder *models.ReminderDetail, customMessage string) error {
	sender, ok := d.senders[reminder.Type]
	if !ok || sender == nil {
		return fmt.Errorf("%w: no sender configured for %s", ErrSendFailed, reminder.Type)
	}
	msg, err := d.renderer.Render(reminder, customMessage)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	err = sender.Send(ctx, msg)
	metrics.RecordDelivery(reminder.Type, err)
	return err
}
