package service

import (
	"strings"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// AccountInput holds the input for creating or updating an account
type AccountInput struct {
	Name           string
	Currency       string
	Color          *string
	Icon           *string
	InitialBalance decimal.Decimal
	OrderNum       int32
}

func validateAccountInput(input *AccountInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.ErrNameRequired
	}
	if len(input.Name) > domain.MaxNameLength {
		return domain.ErrNameTooLong
	}
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Currency == "" {
		input.Currency = domain.DefaultCurrency
	}
	return nil
}

// CreateAccount creates a new account
func (s *AccountService) CreateAccount(input AccountInput) (*domain.Account, error) {
	if err := validateAccountInput(&input); err != nil {
		return nil, err
	}

	account := &domain.Account{
		Name:           input.Name,
		Currency:       input.Currency,
		Color:          input.Color,
		Icon:           input.Icon,
		InitialBalance: input.InitialBalance,
		OrderNum:       input.OrderNum,
	}

	return s.accountRepo.Create(account)
}

// GetAccounts retrieves all accounts
func (s *AccountService) GetAccounts(includeArchived bool) ([]*domain.Account, error) {
	return s.accountRepo.GetAll(includeArchived)
}

// GetAccountByID retrieves an account by ID
func (s *AccountService) GetAccountByID(id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(id)
}

// UpdateAccount updates an existing account
func (s *AccountService) UpdateAccount(id int32, input AccountInput) (*domain.Account, error) {
	if err := validateAccountInput(&input); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	account.Name = input.Name
	account.Currency = input.Currency
	account.Color = input.Color
	account.Icon = input.Icon
	account.InitialBalance = input.InitialBalance
	account.OrderNum = input.OrderNum

	return s.accountRepo.Update(account)
}

// DeleteAccount soft-deletes an account (sets deleted_at timestamp)
func (s *AccountService) DeleteAccount(id int32) error {
	// SoftDelete atomically checks existence and deletes, returning ErrAccountNotFound if not found
	return s.accountRepo.SoftDelete(id)
}
