package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	accountRepo domain.AccountRepository,
	categoryRepo domain.CategoryRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
	}
}

// TransactionInput holds the input for creating or updating a transaction
type TransactionInput struct {
	AccountID   int32
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Title       *string
	Description *string
	CategoryID  *int32
	DateTime    time.Time
}

func (s *TransactionService) validate(input *TransactionInput) error {
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

	if _, err := s.accountRepo.GetByID(input.AccountID); err != nil {
		return domain.ErrAccountNotFound
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(*input.CategoryID); err != nil {
			return domain.ErrCategoryNotFound
		}
	}

	if input.DateTime.IsZero() {
		input.DateTime = time.Now().UTC()
	}

	return nil
}

// CreateTransaction creates a new transaction
func (s *TransactionService) CreateTransaction(input TransactionInput) (*domain.Transaction, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		DateTime:    input.DateTime,
	}

	return s.transactionRepo.Create(transaction)
}

// GetTransactions retrieves transactions matching the filters, paginated
func (s *TransactionService) GetTransactions(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}

	return s.transactionRepo.GetFiltered(filters)
}

// GetTransactionByID retrieves a transaction by ID
func (s *TransactionService) GetTransactionByID(id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(id)
}

// UpdateTransaction updates an existing transaction
func (s *TransactionService) UpdateTransaction(id int32, input TransactionInput) (*domain.Transaction, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	transaction.AccountID = input.AccountID
	transaction.Type = input.Type
	transaction.Amount = input.Amount
	transaction.Title = input.Title
	transaction.Description = input.Description
	transaction.CategoryID = input.CategoryID
	transaction.DateTime = input.DateTime

	return s.transactionRepo.Update(transaction)
}

// DeleteTransaction soft-deletes a transaction. Deleting one leg of a
// transfer removes both legs.
func (s *TransactionService) DeleteTransaction(id int32) error {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return err
	}

	if transaction.TransferPairID != nil {
		return s.transactionRepo.SoftDeleteTransferPair(*transaction.TransferPairID)
	}

	return s.transactionRepo.SoftDelete(id)
}

// TransferInput holds the input for creating an account-to-account transfer
type TransferInput struct {
	FromAccountID int32
	ToAccountID   int32
	Amount        decimal.Decimal
	Title         *string
	Description   *string
	DateTime      time.Time
}

// CreateTransfer records a transfer as an expense on the source account and a
// matching income on the destination account, linked by a shared pair ID.
func (s *TransactionService) CreateTransfer(input TransferInput) (*domain.TransferResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.accountRepo.GetByID(input.FromAccountID); err != nil {
		return nil, domain.ErrAccountNotFound
	}
	if _, err := s.accountRepo.GetByID(input.ToAccountID); err != nil {
		return nil, domain.ErrAccountNotFound
	}

	if input.DateTime.IsZero() {
		input.DateTime = time.Now().UTC()
	}

	pairID := uuid.New()

	fromTx := &domain.Transaction{
		AccountID:      input.FromAccountID,
		Type:           domain.TransactionTypeExpense,
		Amount:         input.Amount,
		Title:          input.Title,
		Description:    input.Description,
		DateTime:       input.DateTime,
		TransferPairID: &pairID,
	}
	toTx := &domain.Transaction{
		AccountID:      input.ToAccountID,
		Type:           domain.TransactionTypeIncome,
		Amount:         input.Amount,
		Title:          input.Title,
		Description:    input.Description,
		DateTime:       input.DateTime,
		TransferPairID: &pairID,
	}

	return s.transactionRepo.CreateTransferPair(fromTx, toTx)
}
