// Package reminders computes renewal reminders and governs their status.
//
// Nothing here performs I/O: callers load a snapshot of subscriptions and
// reminders, compute drafts, and persist them through a repository whose
// (subscription, type, date) uniqueness constraint backs the dedup below.
package reminders

import (
	"bytes"
	"slices"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/models"
)

// ComputeDueReminders returns the reminder drafts that should exist for
// subscriptions ending within leadDays of reference and do not exist yet.
//
// Each due subscription gets one draft per enabled type, dated leadDays
// before its end date. Drafts whose key is already in existing are skipped,
// so repeating the call with the previous output merged into existing
// yields nothing. The result is ordered by reminder date, subscription id
// and type.
func ComputeDueReminders(
	active []models.Subscription,
	existing []models.Reminder,
	reference time.Time,
	leadDays int,
	types []models.ReminderType,
) []models.ReminderDraft {
	seen := make(map[models.ReminderKey]struct{}, len(existing))
	for i := range existing {
		seen[normalizedKey(existing[i].Key())] = struct{}{}
	}

	enabled := uniqueTypes(types)
	var drafts []models.ReminderDraft
	for i := range active {
		sub := &active[i]
		if !billing.IsDueWithin(sub, reference, leadDays) {
			continue
		}
		reminderDate := billing.DateOf(sub.EndDate).AddDate(0, 0, -leadDays)
		for _, t := range enabled {
			draft := models.ReminderDraft{
				SubscriptionID: sub.ID,
				Type:           t,
				ReminderDate:   reminderDate,
			}
			key := draft.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			drafts = append(drafts, draft)
		}
	}

	SortDrafts(drafts)
	return drafts
}

// SortDrafts orders drafts by reminder date, subscription id, then type.
func SortDrafts(drafts []models.ReminderDraft) {
	slices.SortFunc(drafts, func(a, b models.ReminderDraft) int {
		if c := a.ReminderDate.Compare(b.ReminderDate); c != 0 {
			return c
		}
		if c := bytes.Compare(a.SubscriptionID[:], b.SubscriptionID[:]); c != 0 {
			return c
		}
		return a.Type.Rank() - b.Type.Rank()
	})
}

// AsReminders converts drafts into pending reminders so they can be merged
// into an existing snapshot.
func AsReminders(drafts []models.ReminderDraft) []models.Reminder {
	out := make([]models.Reminder, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, models.Reminder{
			SubscriptionID: d.SubscriptionID,
			Type:           d.Type,
			ReminderDate:   d.ReminderDate,
			Status:         models.ReminderStatusPending,
		})
	}
	return out
}

func normalizedKey(k models.ReminderKey) models.ReminderKey {
	k.ReminderDate = billing.DateOf(k.ReminderDate)
	return k
}

func uniqueTypes(types []models.ReminderType) []models.ReminderType {
	out := make([]models.ReminderType, 0, len(types))
	for _, t := range types {
		if t.Valid() && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.ReminderType) int { return a.Rank() - b.Rank() })
	return out
}
