package service

import (
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
)

// UpcomingWindowDays is how far ahead a due date may be and still surface in
// the upcoming feed (inclusive).
const UpcomingWindowDays = 7

// DueStatus classifies a planned payment relative to today.
type DueStatus string

const (
	// DueStatusOverdue marks one-time payments whose due date has passed.
	// Recurring payments are never overdue: an apparently-past due date just
	// means the recurring engine has not run yet.
	DueStatusOverdue DueStatus = "overdue"
	// DueStatusUpcoming marks payments due today or within the next
	// UpcomingWindowDays days.
	DueStatusUpcoming DueStatus = "upcoming"
	// DueStatusNone marks payments that are not surfaced.
	DueStatusNone DueStatus = "none"
)

// NextDueDate returns the next due date for a planned payment, or nil when
// no due date can be determined. One-time payments are due at StartDate
// unconditionally. Recurring payments are due at the first occurrence after
// the watermark (or after today when never processed); a schedule that has
// not started yet is due at StartDate. Interval-arithmetic failures are
// absorbed here and surface as nil so one malformed payment cannot break a
// whole listing pass.
func NextDueDate(p *domain.PlannedPayment, today time.Time) *time.Time {
	if p.OneTime {
		due := StartOfDay(p.StartDate)
		return &due
	}

	if !p.HasValidInterval() {
		return nil
	}

	startDate := StartOfDay(p.StartDate)
	todayDay := StartOfDay(today)

	if startDate.After(todayDay) {
		return &startDate
	}

	reference := todayDay
	if p.LastProcessedDate != nil {
		reference = StartOfDay(*p.LastProcessedDate)
	}

	due, err := NextOccurrenceAfter(startDate, int(*p.IntervalN), *p.IntervalType, reference)
	if err != nil {
		return nil
	}
	return &due
}

// ClassifyDueStatus maps a payment's next due date to a display status. It is
// a pure function of NextDueDate and today.
func ClassifyDueStatus(p *domain.PlannedPayment, today time.Time) (DueStatus, *time.Time) {
	due := NextDueDate(p, today)
	if due == nil {
		return DueStatusNone, nil
	}

	todayDay := StartOfDay(today)
	windowEnd := todayDay.AddDate(0, 0, UpcomingWindowDays)

	if due.Before(todayDay) {
		if p.OneTime {
			return DueStatusOverdue, due
		}
		return DueStatusNone, due
	}
	if !due.After(windowEnd) {
		return DueStatusUpcoming, due
	}
	return DueStatusNone, due
}
