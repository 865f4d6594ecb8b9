package service

import (
	"testing"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
)

func oneTimePayment(start time.Time) *domain.PlannedPayment {
	return &domain.PlannedPayment{
		OneTime:   true,
		StartDate: start,
	}
}

func TestNextDueDate_OneTimeAlwaysStartDate(t *testing.T) {
	start := date(2024, 1, 10)
	p := oneTimePayment(start)

	// Far in the past relative to today, still due at start date
	due := NextDueDate(p, date(2024, 6, 1))
	if due == nil {
		t.Fatal("Expected a due date, got nil")
	}
	if !due.Equal(start) {
		t.Errorf("Expected %v, got %v", start, *due)
	}
}

func TestNextDueDate_RecurringWithoutIntervalIsNil(t *testing.T) {
	p := &domain.PlannedPayment{StartDate: date(2024, 1, 1)}

	if due := NextDueDate(p, date(2024, 3, 1)); due != nil {
		t.Errorf("Expected nil, got %v", *due)
	}
}

func TestNextDueDate_NotStartedYet(t *testing.T) {
	start := date(2024, 9, 1)
	p := monthlyPayment(start)

	due := NextDueDate(p, date(2024, 3, 1))
	if due == nil {
		t.Fatal("Expected a due date, got nil")
	}
	if !due.Equal(start) {
		t.Errorf("Expected start date %v, got %v", start, *due)
	}
}

func TestNextDueDate_UsesWatermark(t *testing.T) {
	p := monthlyPayment(date(2024, 1, 1))
	watermark := date(2024, 3, 1)
	p.LastProcessedDate = &watermark

	due := NextDueDate(p, date(2024, 3, 10))
	if due == nil {
		t.Fatal("Expected a due date, got nil")
	}
	if want := date(2024, 4, 1); !due.Equal(want) {
		t.Errorf("Expected %v, got %v", want, *due)
	}
}

func TestNextDueDate_NeverProcessedUsesToday(t *testing.T) {
	p := monthlyPayment(date(2024, 1, 1))

	due := NextDueDate(p, date(2024, 3, 10))
	if due == nil {
		t.Fatal("Expected a due date, got nil")
	}
	if want := date(2024, 4, 1); !due.Equal(want) {
		t.Errorf("Expected %v, got %v", want, *due)
	}
}

func TestClassifyDueStatus_OneTimeOverdue(t *testing.T) {
	p := oneTimePayment(date(2024, 1, 10))

	status, due := ClassifyDueStatus(p, date(2024, 2, 1))
	if status != DueStatusOverdue {
		t.Errorf("Expected overdue, got %s", status)
	}
	if due == nil || !due.Equal(date(2024, 1, 10)) {
		t.Errorf("Expected due date 2024-01-10, got %v", due)
	}
}

func TestClassifyDueStatus_OneTimeDueTodayIsUpcoming(t *testing.T) {
	p := oneTimePayment(date(2024, 2, 1))

	status, _ := ClassifyDueStatus(p, date(2024, 2, 1))
	if status != DueStatusUpcoming {
		t.Errorf("Expected upcoming, got %s", status)
	}
}

func TestClassifyDueStatus_RecurringNeverOverdue(t *testing.T) {
	p := monthlyPayment(date(2024, 1, 1))
	// Watermark far behind: next due computes strictly after the watermark
	// but the engine not having run yet must not surface as overdue
	watermark := date(2023, 12, 1)
	p.LastProcessedDate = &watermark

	status, _ := ClassifyDueStatus(p, date(2024, 3, 15))
	if status == DueStatusOverdue {
		t.Error("Recurring payments must never classify as overdue")
	}
}

func TestClassifyDueStatus_UpcomingWindowInclusive(t *testing.T) {
	today := date(2024, 3, 1)

	// Exactly at the edge of the window
	edge := oneTimePayment(today.AddDate(0, 0, UpcomingWindowDays))
	status, _ := ClassifyDueStatus(edge, today)
	if status != DueStatusUpcoming {
		t.Errorf("Expected upcoming at window edge, got %s", status)
	}

	// One day past the window
	beyond := oneTimePayment(today.AddDate(0, 0, UpcomingWindowDays+1))
	status, _ = ClassifyDueStatus(beyond, today)
	if status != DueStatusNone {
		t.Errorf("Expected none past window edge, got %s", status)
	}
}

func TestClassifyDueStatus_NoDueDate(t *testing.T) {
	p := &domain.PlannedPayment{StartDate: date(2024, 1, 1)}

	status, due := ClassifyDueStatus(p, date(2024, 3, 1))
	if status != DueStatusNone {
		t.Errorf("Expected none, got %s", status)
	}
	if due != nil {
		t.Errorf("Expected nil due date, got %v", *due)
	}
}
