package service

import (
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
)

// MaxOccurrencesPerRun caps how many occurrence dates a single
// OccurrencesBetween call may yield. It guards against pathological
// configurations (a one-day interval over a multi-year range); when hit, the
// result is truncated rather than treated as an error.
const MaxOccurrencesPerRun = 366

// StartOfDay truncates t to midnight UTC. The schedule does not model
// time of day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Advance returns the date `steps` interval units after t. Dates are
// normalized to start of day. Monthly, quarterly and yearly steps preserve
// the day of month, clamping to the last day of shorter target months
// (Jan 31 + 1 month = Feb 29 on a leap year).
func Advance(t time.Time, steps int, unit domain.IntervalUnit) (time.Time, error) {
	t = StartOfDay(t)
	switch unit {
	case domain.IntervalDaily:
		return t.AddDate(0, 0, steps), nil
	case domain.IntervalWeekly:
		return t.AddDate(0, 0, steps*7), nil
	case domain.IntervalBiweekly:
		return t.AddDate(0, 0, steps*14), nil
	case domain.IntervalMonthly:
		return addMonthsClamped(t, steps), nil
	case domain.IntervalQuarterly:
		return addMonthsClamped(t, steps*3), nil
	case domain.IntervalYearly:
		return addMonthsClamped(t, steps*12), nil
	default:
		return time.Time{}, domain.ErrUnknownIntervalUnit
	}
}

// addMonthsClamped adds calendar months preserving the day of month. Go's
// AddDate normalizes overflow (Jan 31 + 1 month = Mar 2/3), so the target
// month's length is computed first and the day clamped to it.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	// Day 0 of the month after the target is the target month's last day.
	lastDay := time.Date(year, month+time.Month(months)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, month+time.Month(months), day, 0, 0, 0, 0, time.UTC)
}

// NextOccurrenceAfter returns the first occurrence of the schedule anchored
// at anchor that falls strictly after reference. An occurrence exactly on
// reference is not returned: reference is typically the "last processed"
// watermark and that occurrence has already been handled.
func NextOccurrenceAfter(anchor time.Time, steps int, unit domain.IntervalUnit, reference time.Time) (time.Time, error) {
	current := StartOfDay(anchor)
	ref := StartOfDay(reference)

	for !current.After(ref) {
		next, err := Advance(current, steps, unit)
		if err != nil {
			return time.Time{}, err
		}
		current = next
	}

	return current, nil
}

// OccurrencesBetween enumerates every occurrence of the payment's schedule
// inside [from, to], both bounds inclusive, in ascending order. The payment's
// StartDate anchors the schedule; occurrences before from are skipped without
// being yielded. Payments without a valid interval configuration yield
// nothing.
func OccurrencesBetween(p *domain.PlannedPayment, from, to time.Time) []time.Time {
	if !p.HasValidInterval() {
		return nil
	}

	steps := int(*p.IntervalN)
	unit := *p.IntervalType

	current := StartOfDay(p.StartDate)
	fromDay := StartOfDay(from)
	toDay := StartOfDay(to)

	// Fast-forward to the first occurrence on or after from.
	for current.Before(fromDay) {
		next, err := Advance(current, steps, unit)
		if err != nil {
			return nil
		}
		current = next
	}

	var occurrences []time.Time
	for count := 0; !current.After(toDay) && count < MaxOccurrencesPerRun; count++ {
		occurrences = append(occurrences, current)
		next, err := Advance(current, steps, unit)
		if err != nil {
			return occurrences
		}
		current = next
	}

	return occurrences
}
