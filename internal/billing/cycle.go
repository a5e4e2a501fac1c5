// Package billing derives subscription periods from billing cycles.
//
// All functions are pure. Dates are calendar dates represented as
// time.Time values at UTC midnight; DateOf normalizes arbitrary times.
package billing

import (
	"fmt"
	"strings"
	"time"

	"subdesk/internal/models"
)

// Cycles lists the supported billing cycles in display order.
var Cycles = []models.BillingCycle{
	models.BillingCycleMonthly,
	models.BillingCycleQuarterly,
	models.BillingCycleYearly,
}

// ParseBillingCycle validates a billing cycle name.
func ParseBillingCycle(s string) (models.BillingCycle, error) {
	c := models.BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Cycles {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown billing cycle %q", s)
}

// Months returns the length of cycle in calendar months.
func Months(cycle models.BillingCycle) int {
	switch cycle {
	case models.BillingCycleQuarterly:
		return 3
	case models.BillingCycleYearly:
		return 12
	default:
		return 1
	}
}

// DateOf returns the calendar date of t as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Advance returns the end of one billing period starting at start.
// The day of month is kept and clamped to the last day of the target month.
func Advance(start time.Time, cycle models.BillingCycle) time.Time {
	return AddMonths(DateOf(start), Months(cycle))
}

// AddMonths adds months to a calendar date, clamping the day of month.
func AddMonths(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the following month is the last day of this one
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
// It counts whole UTC days so spans longer than a time.Duration stay exact.
func DaysBetween(a, b time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((DateOf(b).Unix() - DateOf(a).Unix()) / secondsPerDay)
}

// IsDueWithin reports whether an active subscription ends between
// reference and reference+horizonDays inclusive.
func IsDueWithin(sub *models.Subscription, reference time.Time, horizonDays int) bool {
	if sub == nil || sub.Status != models.SubscriptionStatusActive {
		return false
	}
	days := DaysBetween(reference, sub.EndDate)
	return days >= 0 && days <= horizonDays
}

// Renew rolls an ended period forward until it covers reference.
// It returns the new start and end dates.
func Renew(sub *models.Subscription, cycle models.BillingCycle, reference time.Time) (time.Time, time.Time) {
	start, end := DateOf(sub.StartDate), DateOf(sub.EndDate)
	ref := DateOf(reference)
	for end.Before(ref) {
		start, end = end, Advance(end, cycle)
	}
	return start, end
}
