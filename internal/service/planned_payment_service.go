package service

import (
	"sort"
	"strings"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/shopspring/decimal"
)

// PlannedPaymentService handles planned payment business logic, including the
// manual pay/skip resolution of due occurrences.
type PlannedPaymentService struct {
	plannedPaymentRepo domain.PlannedPaymentRepository
	transactionRepo    domain.TransactionRepository
	historyRepo        domain.RecurringHistoryRepository
	accountRepo        domain.AccountRepository
	categoryRepo       domain.CategoryRepository
}

// NewPlannedPaymentService creates a new PlannedPaymentService
func NewPlannedPaymentService(
	plannedPaymentRepo domain.PlannedPaymentRepository,
	transactionRepo domain.TransactionRepository,
	historyRepo domain.RecurringHistoryRepository,
	accountRepo domain.AccountRepository,
	categoryRepo domain.CategoryRepository,
) *PlannedPaymentService {
	return &PlannedPaymentService{
		plannedPaymentRepo: plannedPaymentRepo,
		transactionRepo:    transactionRepo,
		historyRepo:        historyRepo,
		accountRepo:        accountRepo,
		categoryRepo:       categoryRepo,
	}
}

// PlannedPaymentInput holds the input for creating or updating a planned payment
type PlannedPaymentInput struct {
	Type              domain.TransactionType
	Amount            decimal.Decimal
	AccountID         int32
	CategoryID        *int32
	Title             *string
	Description       *string
	OneTime           bool
	StartDate         time.Time
	IntervalN         *int32
	IntervalType      *domain.IntervalUnit
	AutoCreateEnabled *bool
}

// validate checks the input and normalizes free-text fields in place.
func (s *PlannedPaymentService) validate(input *PlannedPaymentInput) error {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return domain.ErrInvalidTransactionType
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if len(trimmed) > domain.MaxNameLength {
			return domain.ErrNameTooLong
		}
		if trimmed == "" {
			input.Title = nil
		} else {
			input.Title = &trimmed
		}
	}

	// oneTime XOR valid interval config
	if input.OneTime {
		if input.IntervalN != nil || input.IntervalType != nil {
			return domain.ErrOneTimeHasInterval
		}
	} else {
		if input.IntervalN == nil || *input.IntervalN < 1 || input.IntervalType == nil || !input.IntervalType.Valid() {
			return domain.ErrInvalidInterval
		}
	}

	if _, err := s.accountRepo.GetByID(input.AccountID); err != nil {
		return domain.ErrAccountNotFound
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(*input.CategoryID); err != nil {
			return domain.ErrCategoryNotFound
		}
	}

	return nil
}

// Create creates a new planned payment
func (s *PlannedPaymentService) Create(input PlannedPaymentInput) (*domain.PlannedPayment, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	autoCreate := true
	if input.AutoCreateEnabled != nil {
		autoCreate = *input.AutoCreateEnabled
	}

	payment := &domain.PlannedPayment{
		Type:              input.Type,
		Amount:            input.Amount,
		AccountID:         input.AccountID,
		CategoryID:        input.CategoryID,
		Title:             input.Title,
		Description:       input.Description,
		OneTime:           input.OneTime,
		StartDate:         StartOfDay(input.StartDate),
		IntervalN:         input.IntervalN,
		IntervalType:      input.IntervalType,
		AutoCreateEnabled: autoCreate,
	}

	return s.plannedPaymentRepo.Create(payment)
}

// GetAll retrieves all planned payments
func (s *PlannedPaymentService) GetAll() ([]*domain.PlannedPayment, error) {
	return s.plannedPaymentRepo.GetAll()
}

// GetByID retrieves a planned payment by ID
func (s *PlannedPaymentService) GetByID(id int32) (*domain.PlannedPayment, error) {
	return s.plannedPaymentRepo.GetByID(id)
}

// Update updates an existing planned payment
func (s *PlannedPaymentService) Update(id int32, input PlannedPaymentInput) (*domain.PlannedPayment, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	existing, err := s.plannedPaymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	existing.Type = input.Type
	existing.Amount = input.Amount
	existing.AccountID = input.AccountID
	existing.CategoryID = input.CategoryID
	existing.Title = input.Title
	existing.Description = input.Description
	existing.OneTime = input.OneTime
	existing.StartDate = StartOfDay(input.StartDate)
	existing.IntervalN = input.IntervalN
	existing.IntervalType = input.IntervalType
	if input.AutoCreateEnabled != nil {
		existing.AutoCreateEnabled = *input.AutoCreateEnabled
	}

	return s.plannedPaymentRepo.Update(existing)
}

// Delete removes a planned payment and purges its recurring history ledger.
func (s *PlannedPaymentService) Delete(id int32) error {
	if _, err := s.plannedPaymentRepo.GetByID(id); err != nil {
		return err
	}

	if err := s.historyRepo.DeleteByPlannedPaymentID(id); err != nil {
		return err
	}

	return s.plannedPaymentRepo.Delete(id)
}

// Pay resolves the current due occurrence of a planned payment by creating a
// transaction dated now. A one-time payment is fully consumed and deleted; a
// recurring payment's watermark moves to now so the next automatic run
// computes the following occurrence.
func (s *PlannedPaymentService) Pay(id int32, now time.Time) (*domain.Transaction, error) {
	payment, err := s.plannedPaymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	paymentID := payment.ID
	tx, err := s.transactionRepo.Create(&domain.Transaction{
		AccountID:        payment.AccountID,
		Type:             payment.Type,
		Amount:           payment.Amount,
		Title:            payment.Title,
		Description:      payment.Description,
		CategoryID:       payment.CategoryID,
		DateTime:         now,
		PlannedPaymentID: &paymentID,
	})
	if err != nil {
		return nil, err
	}

	if payment.OneTime {
		if err := s.historyRepo.DeleteByPlannedPaymentID(payment.ID); err != nil {
			return nil, err
		}
		if err := s.plannedPaymentRepo.Delete(payment.ID); err != nil {
			return nil, err
		}
		return tx, nil
	}

	if err := s.plannedPaymentRepo.SetLastProcessed(payment.ID, StartOfDay(now)); err != nil {
		return nil, err
	}
	return tx, nil
}

// Skip resolves the current due occurrence without creating a transaction. A
// one-time payment is deleted; a recurring payment's watermark moves one day
// past the current due date (or to now when no due date is determinable). No
// history record is written: idempotency for skipped occurrences rests on the
// watermark alone.
func (s *PlannedPaymentService) Skip(id int32, now time.Time) error {
	payment, err := s.plannedPaymentRepo.GetByID(id)
	if err != nil {
		return err
	}

	if payment.OneTime {
		if err := s.historyRepo.DeleteByPlannedPaymentID(payment.ID); err != nil {
			return err
		}
		return s.plannedPaymentRepo.Delete(payment.ID)
	}

	// The sweep window is watermark-inclusive, so landing exactly on the due
	// date would re-materialize the skipped occurrence on the next sweep.
	skipTo := StartOfDay(now)
	if due := NextDueDate(payment, now); due != nil {
		skipTo = StartOfDay(*due).AddDate(0, 0, 1)
	}

	return s.plannedPaymentRepo.SetLastProcessed(payment.ID, skipTo)
}

// DuePayment pairs a planned payment with its computed due date for the due feed.
type DuePayment struct {
	Payment *domain.PlannedPayment `json:"payment"`
	DueDate time.Time              `json:"dueDate"`
}

// DueFeed groups payments users should act on: overdue one-time payments and
// anything due within the upcoming window, each sorted by due date.
type DueFeed struct {
	Overdue  []DuePayment `json:"overdue"`
	Upcoming []DuePayment `json:"upcoming"`
}

// GetDueFeed classifies every planned payment relative to today.
func (s *PlannedPaymentService) GetDueFeed(today time.Time) (*DueFeed, error) {
	payments, err := s.plannedPaymentRepo.GetAll()
	if err != nil {
		return nil, err
	}

	feed := &DueFeed{}
	for _, p := range payments {
		status, due := ClassifyDueStatus(p, today)
		switch status {
		case DueStatusOverdue:
			feed.Overdue = append(feed.Overdue, DuePayment{Payment: p, DueDate: *due})
		case DueStatusUpcoming:
			feed.Upcoming = append(feed.Upcoming, DuePayment{Payment: p, DueDate: *due})
		}
	}

	sortDuePayments(feed.Overdue)
	sortDuePayments(feed.Upcoming)

	return feed, nil
}

func sortDuePayments(payments []DuePayment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].DueDate.Before(payments[j].DueDate)
	})
}

// GetHistory returns the materialization ledger for a planned payment.
func (s *PlannedPaymentService) GetHistory(id int32) ([]*domain.RecurringHistory, error) {
	if _, err := s.plannedPaymentRepo.GetByID(id); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByPlannedPaymentID(id)
}
