package reminders

import (
	"iter"
	"slices"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/models"
)

// ListPending yields the pending reminders due on or before reference,
// oldest reminder date first. The sequence may be ranged over repeatedly.
func ListPending(all []models.Reminder, reference time.Time) iter.Seq[models.Reminder] {
	ref := billing.DateOf(reference)
	return func(yield func(models.Reminder) bool) {
		due := make([]int, 0, len(all))
		for i := range all {
			r := &all[i]
			if r.Status == models.ReminderStatusPending && !billing.DateOf(r.ReminderDate).After(ref) {
				due = append(due, i)
			}
		}
		slices.SortStableFunc(due, func(a, b int) int {
			return all[a].ReminderDate.Compare(all[b].ReminderDate)
		})
		for _, i := range due {
			if !yield(all[i]) {
				return
			}
		}
	}
}
