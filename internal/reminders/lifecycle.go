package reminders

import (
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"
)

// MarkSent moves a pending reminder to sent, stamping sentAt.
// Sent and failed are terminal.
func MarkSent(r models.Reminder, sentAt time.Time) (models.Reminder, error) {
	if r.Status != models.ReminderStatusPending {
		return r, common.InvalidTransition("reminder", r.ID, string(r.Status), string(models.ReminderStatusSent))
	}
	at := sentAt.UTC()
	r.Status = models.ReminderStatusSent
	r.SentAt = &at
	return r, nil
}

// MarkFailed moves a pending reminder to failed.
func MarkFailed(r models.Reminder) (models.Reminder, error) {
	if r.Status != models.ReminderStatusPending {
		return r, common.InvalidTransition("reminder", r.ID, string(r.Status), string(models.ReminderStatusFailed))
	}
	r.Status = models.ReminderStatusFailed
	r.SentAt = nil
	return r, nil
}
