package reminders

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"subdesk/internal/models"

	"github.com/google/uuid"
)

// Policy is the reminder schedule used when a subscription has no settings.
type Policy struct {
	LeadDays []int
	Types    []models.ReminderType
}

// Run is one generator invocation: the subscriptions sharing a lead time
// and a set of enabled types.
type Run struct {
	LeadDays      int
	Types         []models.ReminderType
	Subscriptions []models.Subscription
}

// PlanRuns groups subscriptions by the lead days and channels that apply to
// them. Per-subscription settings replace the policy entirely; settings with
// no channel enabled opt the subscription out.
func PlanRuns(subs []models.Subscription, settings map[uuid.UUID]*models.ReminderSettings, policy Policy) []Run {
	type runKey struct {
		leadDays int
		types    string
	}
	groups := make(map[runKey]*Run)

	for _, sub := range subs {
		days, types := policy.LeadDays, policy.Types
		if s, ok := settings[sub.ID]; ok && s != nil {
			days, types = s.ReminderDays, s.EnabledTypes()
		}
		types = uniqueTypes(types)
		if len(types) == 0 {
			continue
		}
		for _, d := range uniqueDays(days) {
			k := runKey{leadDays: d, types: typesKey(types)}
			run, ok := groups[k]
			if !ok {
				run = &Run{LeadDays: d, Types: types}
				groups[k] = run
			}
			run.Subscriptions = append(run.Subscriptions, sub)
		}
	}

	runs := make([]Run, 0, len(groups))
	for _, r := range groups {
		runs = append(runs, *r)
	}
	slices.SortFunc(runs, func(a, b Run) int {
		if c := cmp.Compare(a.LeadDays, b.LeadDays); c != 0 {
			return c
		}
		return strings.Compare(typesKey(a.Types), typesKey(b.Types))
	})
	return runs
}

// ComputePlanned runs the generator once per planned run, feeding each
// run's drafts into the snapshot of the next so keys never repeat.
func ComputePlanned(
	subs []models.Subscription,
	existing []models.Reminder,
	settings map[uuid.UUID]*models.ReminderSettings,
	policy Policy,
	reference time.Time,
) []models.ReminderDraft {
	snapshot := slices.Clone(existing)
	var all []models.ReminderDraft
	for _, run := range PlanRuns(subs, settings, policy) {
		drafts := ComputeDueReminders(run.Subscriptions, snapshot, reference, run.LeadDays, run.Types)
		snapshot = append(snapshot, AsReminders(drafts)...)
		all = append(all, drafts...)
	}
	SortDrafts(all)
	return all
}

func uniqueDays(days []int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d >= 0 && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out
}

func typesKey(types []models.ReminderType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
