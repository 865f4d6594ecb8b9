package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/ivywallet/ivywallet-server/internal/testutil"
	"github.com/shopspring/decimal"
)

type recurringFixture struct {
	paymentRepo     *testutil.MockPlannedPaymentRepository
	transactionRepo *testutil.MockTransactionRepository
	historyRepo     *testutil.MockRecurringHistoryRepository
	service         *RecurringService
}

func newRecurringFixture() *recurringFixture {
	paymentRepo := testutil.NewMockPlannedPaymentRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	historyRepo := testutil.NewMockRecurringHistoryRepository()
	return &recurringFixture{
		paymentRepo:     paymentRepo,
		transactionRepo: transactionRepo,
		historyRepo:     historyRepo,
		service:         NewRecurringService(paymentRepo, transactionRepo, historyRepo),
	}
}

func recurringSubscription(id int32, start time.Time) *domain.PlannedPayment {
	n := int32(1)
	unit := domain.IntervalMonthly
	title := "Netflix"
	return &domain.PlannedPayment{
		ID:                id,
		Type:              domain.TransactionTypeExpense,
		Amount:            decimal.NewFromInt(15),
		AccountID:         1,
		Title:             &title,
		StartDate:         start,
		IntervalN:         &n,
		IntervalType:      &unit,
		AutoCreateEnabled: true,
	}
}

func TestProcessRecurring_MaterializesAllDueOccurrences(t *testing.T) {
	f := newRecurringFixture()
	f.paymentRepo.AddPayment(recurringSubscription(1, date(2024, 1, 1)))

	created := f.service.ProcessRecurring(date(2024, 3, 15))

	// Jan 1, Feb 1 and Mar 1 are due; Apr 1 is not
	if len(created) != 3 {
		t.Fatalf("Expected 3 created occurrences, got %d", len(created))
	}

	wantDates := []time.Time{date(2024, 1, 1), date(2024, 2, 1), date(2024, 3, 1)}
	for i, want := range wantDates {
		if !created[i].Date.Equal(want) {
			t.Errorf("Occurrence %d: expected %v, got %v", i, want, created[i].Date)
		}
	}

	if len(f.transactionRepo.Transactions) != 3 {
		t.Errorf("Expected 3 transactions, got %d", len(f.transactionRepo.Transactions))
	}
	if len(f.historyRepo.Records) != 3 {
		t.Errorf("Expected 3 history records, got %d", len(f.historyRepo.Records))
	}

	// Transactions carry the scheduled date and the payment link
	for _, tx := range f.transactionRepo.Transactions {
		if tx.PlannedPaymentID == nil || *tx.PlannedPaymentID != 1 {
			t.Error("Expected transaction linked to planned payment 1")
		}
		if tx.Type != domain.TransactionTypeExpense {
			t.Errorf("Expected expense, got %s", tx.Type)
		}
		if !tx.Amount.Equal(decimal.NewFromInt(15)) {
			t.Errorf("Expected amount 15, got %s", tx.Amount.String())
		}
	}

	// Watermark advanced to today
	payment, _ := f.paymentRepo.GetByID(1)
	if payment.LastProcessedDate == nil || !payment.LastProcessedDate.Equal(date(2024, 3, 15)) {
		t.Errorf("Expected watermark 2024-03-15, got %v", payment.LastProcessedDate)
	}
}

func TestProcessRecurring_RerunCreatesNothing(t *testing.T) {
	f := newRecurringFixture()
	f.paymentRepo.AddPayment(recurringSubscription(1, date(2024, 1, 1)))

	first := f.service.ProcessRecurring(date(2024, 3, 15))
	if len(first) != 3 {
		t.Fatalf("Expected 3 created occurrences on first run, got %d", len(first))
	}

	second := f.service.ProcessRecurring(date(2024, 3, 15))
	if len(second) != 0 {
		t.Errorf("Expected no created occurrences on rerun, got %d", len(second))
	}
	if len(f.transactionRepo.Transactions) != 3 {
		t.Errorf("Expected transaction count unchanged at 3, got %d", len(f.transactionRepo.Transactions))
	}
}

func TestProcessRecurring_LedgerBlocksDuplicates(t *testing.T) {
	f := newRecurringFixture()
	p := recurringSubscription(1, date(2024, 1, 1))
	f.paymentRepo.AddPayment(p)

	// Feb 1 was already materialized by an earlier run whose watermark
	// write was lost
	f.historyRepo.Create(&domain.RecurringHistory{
		PlannedPaymentID: 1,
		TransactionID:    99,
		ScheduledDate:    date(2024, 2, 1),
		Amount:           p.Amount,
	})

	created := f.service.ProcessRecurring(date(2024, 3, 15))

	if len(created) != 2 {
		t.Fatalf("Expected 2 created occurrences, got %d", len(created))
	}
	for _, occ := range created {
		if occ.Date.Equal(date(2024, 2, 1)) {
			t.Error("Feb 1 occurrence was materialized twice")
		}
	}
}

func TestProcessRecurring_ResumesFromWatermark(t *testing.T) {
	f := newRecurringFixture()
	p := recurringSubscription(1, date(2024, 1, 1))
	watermark := date(2024, 2, 10)
	p.LastProcessedDate = &watermark
	f.paymentRepo.AddPayment(p)

	created := f.service.ProcessRecurring(date(2024, 4, 15))

	// Only Mar 1 and Apr 1 fall after the watermark
	if len(created) != 2 {
		t.Fatalf("Expected 2 created occurrences, got %d", len(created))
	}
	if !created[0].Date.Equal(date(2024, 3, 1)) || !created[1].Date.Equal(date(2024, 4, 1)) {
		t.Errorf("Expected Mar 1 and Apr 1, got %v and %v", created[0].Date, created[1].Date)
	}
}

func TestProcessRecurring_SkipsIneligiblePayments(t *testing.T) {
	f := newRecurringFixture()

	oneTime := recurringSubscription(1, date(2024, 1, 1))
	oneTime.OneTime = true
	oneTime.IntervalN = nil
	oneTime.IntervalType = nil
	f.paymentRepo.AddPayment(oneTime)

	disabled := recurringSubscription(2, date(2024, 1, 1))
	disabled.AutoCreateEnabled = false
	f.paymentRepo.AddPayment(disabled)

	future := recurringSubscription(3, date(2025, 1, 1))
	f.paymentRepo.AddPayment(future)

	noInterval := recurringSubscription(4, date(2024, 1, 1))
	noInterval.IntervalN = nil
	f.paymentRepo.AddPayment(noInterval)

	created := f.service.ProcessRecurring(date(2024, 3, 15))
	if len(created) != 0 {
		t.Errorf("Expected no created occurrences, got %d", len(created))
	}

	// Ineligible payments keep their watermark untouched
	for _, id := range []int32{1, 2, 3, 4} {
		payment, _ := f.paymentRepo.GetByID(id)
		if payment.LastProcessedDate != nil {
			t.Errorf("Payment %d: expected nil watermark, got %v", id, payment.LastProcessedDate)
		}
	}
}

func TestProcessRecurring_LoadFailureReturnsEmpty(t *testing.T) {
	f := newRecurringFixture()
	f.paymentRepo.GetAllFn = func() ([]*domain.PlannedPayment, error) {
		return nil, errors.New("database gone")
	}

	created := f.service.ProcessRecurring(date(2024, 3, 15))
	if created != nil {
		t.Errorf("Expected nil, got %d occurrences", len(created))
	}
}

func TestProcessRecurring_HistoryFailureLeavesWatermark(t *testing.T) {
	f := newRecurringFixture()
	f.paymentRepo.AddPayment(recurringSubscription(1, date(2024, 1, 1)))
	f.historyRepo.GetFn = func(plannedPaymentID int32) ([]*domain.RecurringHistory, error) {
		return nil, errors.New("database gone")
	}

	created := f.service.ProcessRecurring(date(2024, 3, 15))
	if len(created) != 0 {
		t.Errorf("Expected no created occurrences, got %d", len(created))
	}

	// Failing before the occurrence loop must not advance the watermark
	payment, _ := f.paymentRepo.GetByID(1)
	if payment.LastProcessedDate != nil {
		t.Errorf("Expected nil watermark, got %v", payment.LastProcessedDate)
	}
}

func TestProcessRecurring_OccurrenceFailureDoesNotBlockOthers(t *testing.T) {
	f := newRecurringFixture()
	f.paymentRepo.AddPayment(recurringSubscription(1, date(2024, 1, 1)))

	calls := 0
	f.transactionRepo.CreateFn = func(tx *domain.Transaction) (*domain.Transaction, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("insert failed")
		}
		tx.ID = int32(calls)
		f.transactionRepo.Transactions[tx.ID] = tx
		return tx, nil
	}

	created := f.service.ProcessRecurring(date(2024, 3, 15))

	// Feb 1 failed; Jan 1 and Mar 1 still materialized
	if len(created) != 2 {
		t.Fatalf("Expected 2 created occurrences, got %d", len(created))
	}
	if !created[0].Date.Equal(date(2024, 1, 1)) || !created[1].Date.Equal(date(2024, 3, 1)) {
		t.Errorf("Expected Jan 1 and Mar 1, got %v and %v", created[0].Date, created[1].Date)
	}

	// Watermark still advances; the failed occurrence is dropped, not retried
	payment, _ := f.paymentRepo.GetByID(1)
	if payment.LastProcessedDate == nil || !payment.LastProcessedDate.Equal(date(2024, 3, 15)) {
		t.Errorf("Expected watermark 2024-03-15, got %v", payment.LastProcessedDate)
	}
}

func TestProcessRecurring_FailingPaymentDoesNotBlockOthers(t *testing.T) {
	f := newRecurringFixture()
	f.paymentRepo.AddPayment(recurringSubscription(1, date(2024, 1, 1)))
	f.paymentRepo.AddPayment(recurringSubscription(2, date(2024, 1, 1)))

	f.historyRepo.GetFn = func(plannedPaymentID int32) ([]*domain.RecurringHistory, error) {
		if plannedPaymentID == 1 {
			return nil, errors.New("database gone")
		}
		return nil, nil
	}

	created := f.service.ProcessRecurring(date(2024, 2, 15))

	// Payment 1 failed entirely; payment 2 still produced Jan 1 and Feb 1
	if len(created) != 2 {
		t.Fatalf("Expected 2 created occurrences, got %d", len(created))
	}
	for _, occ := range created {
		if occ.PaymentID != 2 {
			t.Errorf("Expected occurrences only from payment 2, got payment %d", occ.PaymentID)
		}
	}
}

func TestProcessRecurring_UntitledPaymentGetsFallbackTitle(t *testing.T) {
	f := newRecurringFixture()
	p := recurringSubscription(1, date(2024, 1, 1))
	p.Title = nil
	f.paymentRepo.AddPayment(p)

	created := f.service.ProcessRecurring(date(2024, 1, 15))
	if len(created) != 1 {
		t.Fatalf("Expected 1 created occurrence, got %d", len(created))
	}
	if created[0].PaymentTitle != "Recurring Payment" {
		t.Errorf("Expected fallback title, got %q", created[0].PaymentTitle)
	}
}
