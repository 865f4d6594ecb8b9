package service

import (
	"testing"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/ivywallet/ivywallet-server/internal/testutil"
	"github.com/shopspring/decimal"
)

type plannedPaymentFixture struct {
	paymentRepo     *testutil.MockPlannedPaymentRepository
	transactionRepo *testutil.MockTransactionRepository
	historyRepo     *testutil.MockRecurringHistoryRepository
	accountRepo     *testutil.MockAccountRepository
	categoryRepo    *testutil.MockCategoryRepository
	service         *PlannedPaymentService
}

func newPlannedPaymentFixture() *plannedPaymentFixture {
	paymentRepo := testutil.NewMockPlannedPaymentRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	historyRepo := testutil.NewMockRecurringHistoryRepository()
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()

	accountRepo.AddAccount(&domain.Account{ID: 1, Name: "Checking", Currency: "USD"})
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Bills"})

	return &plannedPaymentFixture{
		paymentRepo:     paymentRepo,
		transactionRepo: transactionRepo,
		historyRepo:     historyRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		service: NewPlannedPaymentService(
			paymentRepo, transactionRepo, historyRepo, accountRepo, categoryRepo,
		),
	}
}

func monthlyInput() PlannedPaymentInput {
	n := int32(1)
	unit := domain.IntervalMonthly
	title := "Rent"
	return PlannedPaymentInput{
		Type:         domain.TransactionTypeExpense,
		Amount:       decimal.NewFromInt(1200),
		AccountID:    1,
		Title:        &title,
		StartDate:    date(2024, 1, 1),
		IntervalN:    &n,
		IntervalType: &unit,
	}
}

func TestCreatePlannedPayment_Recurring(t *testing.T) {
	f := newPlannedPaymentFixture()

	payment, err := f.service.Create(monthlyInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if payment.OneTime {
		t.Error("Expected recurring payment")
	}
	if !payment.AutoCreateEnabled {
		t.Error("Expected auto-create enabled by default")
	}
	if !payment.StartDate.Equal(date(2024, 1, 1)) {
		t.Errorf("Expected start date 2024-01-01, got %v", payment.StartDate)
	}
}

func TestCreatePlannedPayment_OneTime(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.OneTime = true
	input.IntervalN = nil
	input.IntervalType = nil

	payment, err := f.service.Create(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !payment.OneTime {
		t.Error("Expected one-time payment")
	}
}

func TestCreatePlannedPayment_OneTimeWithIntervalRejected(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.OneTime = true

	if _, err := f.service.Create(input); err != domain.ErrOneTimeHasInterval {
		t.Errorf("Expected ErrOneTimeHasInterval, got %v", err)
	}
}

func TestCreatePlannedPayment_RecurringWithoutIntervalRejected(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.IntervalN = nil

	if _, err := f.service.Create(input); err != domain.ErrInvalidInterval {
		t.Errorf("Expected ErrInvalidInterval, got %v", err)
	}
}

func TestCreatePlannedPayment_ZeroIntervalRejected(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	zero := int32(0)
	input.IntervalN = &zero

	if _, err := f.service.Create(input); err != domain.ErrInvalidInterval {
		t.Errorf("Expected ErrInvalidInterval, got %v", err)
	}
}

func TestCreatePlannedPayment_NonPositiveAmountRejected(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.Amount = decimal.Zero

	if _, err := f.service.Create(input); err != domain.ErrInvalidAmount {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreatePlannedPayment_UnknownAccountRejected(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.AccountID = 999

	if _, err := f.service.Create(input); err != domain.ErrAccountNotFound {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestCreatePlannedPayment_UnknownCategoryRejected(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	categoryID := int32(999)
	input.CategoryID = &categoryID

	if _, err := f.service.Create(input); err != domain.ErrCategoryNotFound {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestPay_OneTimeCreatesTransactionAndDeletesPayment(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.OneTime = true
	input.IntervalN = nil
	input.IntervalType = nil
	payment, err := f.service.Create(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now := date(2024, 2, 5)
	tx, err := f.service.Pay(payment.ID, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tx.PlannedPaymentID == nil || *tx.PlannedPaymentID != payment.ID {
		t.Error("Expected transaction linked to the planned payment")
	}
	if !tx.DateTime.Equal(now) {
		t.Errorf("Expected transaction dated %v, got %v", now, tx.DateTime)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected amount 1200, got %s", tx.Amount.String())
	}

	if _, err := f.paymentRepo.GetByID(payment.ID); err != domain.ErrPlannedPaymentNotFound {
		t.Error("Expected one-time payment deleted after paying")
	}
}

func TestPay_RecurringMovesWatermark(t *testing.T) {
	f := newPlannedPaymentFixture()

	payment, err := f.service.Create(monthlyInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now := date(2024, 2, 5)
	if _, err := f.service.Pay(payment.ID, now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Payment survives, watermark moved to today
	updated, err := f.paymentRepo.GetByID(payment.ID)
	if err != nil {
		t.Fatalf("Expected payment to survive, got %v", err)
	}
	if updated.LastProcessedDate == nil || !updated.LastProcessedDate.Equal(now) {
		t.Errorf("Expected watermark %v, got %v", now, updated.LastProcessedDate)
	}
}

func TestPay_UnknownPayment(t *testing.T) {
	f := newPlannedPaymentFixture()

	if _, err := f.service.Pay(999, date(2024, 1, 1)); err != domain.ErrPlannedPaymentNotFound {
		t.Errorf("Expected ErrPlannedPaymentNotFound, got %v", err)
	}
}

func TestSkip_OneTimeDeletesPayment(t *testing.T) {
	f := newPlannedPaymentFixture()

	input := monthlyInput()
	input.OneTime = true
	input.IntervalN = nil
	input.IntervalType = nil
	payment, err := f.service.Create(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := f.service.Skip(payment.ID, date(2024, 2, 5)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := f.paymentRepo.GetByID(payment.ID); err != domain.ErrPlannedPaymentNotFound {
		t.Error("Expected one-time payment deleted after skipping")
	}
	if len(f.transactionRepo.Transactions) != 0 {
		t.Error("Skipping must not create a transaction")
	}
}

func TestSkip_RecurringMovesWatermarkPastDueDate(t *testing.T) {
	f := newPlannedPaymentFixture()

	payment, err := f.service.Create(monthlyInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Next due after today (2024-02-05) is Mar 1; the watermark lands one day
	// later so an inclusive sweep cannot pick the skipped occurrence back up.
	if err := f.service.Skip(payment.ID, date(2024, 2, 5)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated, _ := f.paymentRepo.GetByID(payment.ID)
	if updated.LastProcessedDate == nil || !updated.LastProcessedDate.Equal(date(2024, 3, 2)) {
		t.Errorf("Expected watermark 2024-03-02, got %v", updated.LastProcessedDate)
	}
	if len(f.transactionRepo.Transactions) != 0 {
		t.Error("Skipping must not create a transaction")
	}
}

func TestSkip_SweepDoesNotRecreateSkippedOccurrence(t *testing.T) {
	f := newPlannedPaymentFixture()

	payment, err := f.service.Create(monthlyInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Skip the Mar 1 occurrence, then sweep a few days later.
	if err := f.service.Skip(payment.ID, date(2024, 2, 5)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	recurring := NewRecurringService(f.paymentRepo, f.transactionRepo, f.historyRepo)
	created := recurring.ProcessRecurring(date(2024, 3, 5))

	if len(created) != 0 {
		t.Errorf("Expected no materialized occurrences, got %d", len(created))
	}
	if len(f.transactionRepo.Transactions) != 0 {
		t.Error("Sweeping after a skip must not create a transaction")
	}
}

func TestDelete_PurgesHistory(t *testing.T) {
	f := newPlannedPaymentFixture()

	payment, err := f.service.Create(monthlyInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	f.historyRepo.Create(&domain.RecurringHistory{
		PlannedPaymentID: payment.ID,
		TransactionID:    1,
		ScheduledDate:    date(2024, 1, 1),
		Amount:           payment.Amount,
	})

	if err := f.service.Delete(payment.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	records, _ := f.historyRepo.GetByPlannedPaymentID(payment.ID)
	if len(records) != 0 {
		t.Errorf("Expected history purged, got %d records", len(records))
	}
}

func TestGetDueFeed_ClassifiesAndSorts(t *testing.T) {
	f := newPlannedPaymentFixture()

	// Two overdue one-time payments, out of order
	lateB := monthlyInput()
	lateB.OneTime = true
	lateB.IntervalN = nil
	lateB.IntervalType = nil
	lateB.StartDate = date(2024, 1, 20)
	if _, err := f.service.Create(lateB); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	lateA := lateB
	lateA.StartDate = date(2024, 1, 10)
	if _, err := f.service.Create(lateA); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Recurring payment due within the window
	soon := monthlyInput()
	soon.StartDate = date(2024, 1, 1)
	if _, err := f.service.Create(soon); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Recurring payment far in the future
	later := monthlyInput()
	later.StartDate = date(2024, 6, 1)
	if _, err := f.service.Create(later); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	today := date(2024, 2, 25)
	feed, err := f.service.GetDueFeed(today)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(feed.Overdue) != 2 {
		t.Fatalf("Expected 2 overdue payments, got %d", len(feed.Overdue))
	}
	if !feed.Overdue[0].DueDate.Equal(date(2024, 1, 10)) {
		t.Errorf("Expected earliest overdue first, got %v", feed.Overdue[0].DueDate)
	}

	// The monthly payment anchored Jan 1 is due Mar 1, inside the window
	if len(feed.Upcoming) != 1 {
		t.Fatalf("Expected 1 upcoming payment, got %d", len(feed.Upcoming))
	}
	if !feed.Upcoming[0].DueDate.Equal(date(2024, 3, 1)) {
		t.Errorf("Expected upcoming due 2024-03-01, got %v", feed.Upcoming[0].DueDate)
	}
}

func TestGetHistory_UnknownPayment(t *testing.T) {
	f := newPlannedPaymentFixture()

	if _, err := f.service.GetHistory(999); err != domain.ErrPlannedPaymentNotFound {
		t.Errorf("Expected ErrPlannedPaymentNotFound, got %v", err)
	}
}
