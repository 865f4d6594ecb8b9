package testutil

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ivywallet/ivywallet-server/internal/domain"
)

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	NextID   int32
	CreateFn func(account *domain.Account) (*domain.Account, error)
	GetAllFn func(includeArchived bool) ([]*domain.Account, error)
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// Create creates a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	if m.CreateFn != nil {
		return m.CreateFn(account)
	}
	account.ID = m.NextID
	m.NextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(id int32) (*domain.Account, error) {
	if account, ok := m.Accounts[id]; ok && account.DeletedAt == nil {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetAll retrieves all accounts
func (m *MockAccountRepository) GetAll(includeArchived bool) ([]*domain.Account, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(includeArchived)
	}
	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.DeletedAt != nil && !includeArchived {
			continue
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Update updates an existing account
func (m *MockAccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	if _, ok := m.Accounts[account.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	m.Accounts[account.ID] = account
	return account, nil
}

// SoftDelete marks an account as deleted
func (m *MockAccountRepository) SoftDelete(id int32) error {
	account, ok := m.Accounts[id]
	if !ok || account.DeletedAt != nil {
		return domain.ErrAccountNotFound
	}
	now := time.Now()
	account.DeletedAt = &now
	return nil
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.Accounts[account.ID] = account
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
	CreateFn   func(category *domain.Category) (*domain.Category, error)
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	if m.CreateFn != nil {
		return m.CreateFn(category)
	}
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(id int32) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok && category.DeletedAt == nil {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAll retrieves all categories
func (m *MockCategoryRepository) GetAll() ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.DeletedAt == nil {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// Update updates an existing category
func (m *MockCategoryRepository) Update(category *domain.Category) (*domain.Category, error) {
	if _, ok := m.Categories[category.ID]; !ok {
		return nil, domain.ErrCategoryNotFound
	}
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// SoftDelete marks a category as deleted
func (m *MockCategoryRepository) SoftDelete(id int32) error {
	category, ok := m.Categories[id]
	if !ok || category.DeletedAt != nil {
		return domain.ErrCategoryNotFound
	}
	now := time.Now()
	category.DeletedAt = &now
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32
	CreateFn     func(transaction *domain.Transaction) (*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	if tx, ok := m.Transactions[id]; ok && tx.DeletedAt == nil {
		return tx, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// GetFiltered retrieves transactions matching the filters, paginated
func (m *MockTransactionRepository) GetFiltered(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.DeletedAt != nil {
			continue
		}
		if filters.AccountID != nil && tx.AccountID != *filters.AccountID {
			continue
		}
		if filters.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if filters.StartDate != nil && tx.DateTime.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && tx.DateTime.After(*filters.EndDate) {
			continue
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DateTime.After(matched[j].DateTime) })

	total := int64(len(matched))
	start := (filters.Page - 1) * filters.PageSize
	end := start + filters.PageSize
	if start > int32(len(matched)) {
		start = int32(len(matched))
	}
	if end > int32(len(matched)) {
		end = int32(len(matched))
	}

	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: int32(math.Ceil(float64(total) / float64(filters.PageSize))),
	}, nil
}

// Update updates an existing transaction
func (m *MockTransactionRepository) Update(transaction *domain.Transaction) (*domain.Transaction, error) {
	if _, ok := m.Transactions[transaction.ID]; !ok {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// SoftDelete marks a transaction as deleted
func (m *MockTransactionRepository) SoftDelete(id int32) error {
	tx, ok := m.Transactions[id]
	if !ok || tx.DeletedAt != nil {
		return domain.ErrTransactionNotFound
	}
	now := time.Now()
	tx.DeletedAt = &now
	return nil
}

// CreateTransferPair creates both legs of a transfer
func (m *MockTransactionRepository) CreateTransferPair(fromTx, toTx *domain.Transaction) (*domain.TransferResult, error) {
	from, err := m.Create(fromTx)
	if err != nil {
		return nil, err
	}
	to, err := m.Create(toTx)
	if err != nil {
		return nil, err
	}
	return &domain.TransferResult{From: from, To: to}, nil
}

// SoftDeleteTransferPair marks both legs of a transfer as deleted
func (m *MockTransactionRepository) SoftDeleteTransferPair(pairID uuid.UUID) error {
	now := time.Now()
	found := false
	for _, tx := range m.Transactions {
		if tx.TransferPairID != nil && *tx.TransferPairID == pairID && tx.DeletedAt == nil {
			tx.DeletedAt = &now
			found = true
		}
	}
	if !found {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// MockPlannedPaymentRepository is a mock implementation of domain.PlannedPaymentRepository
type MockPlannedPaymentRepository struct {
	Payments           map[int32]*domain.PlannedPayment
	NextID             int32
	GetAllFn           func() ([]*domain.PlannedPayment, error)
	SetLastProcessedFn func(id int32, lastProcessed time.Time) error
}

// NewMockPlannedPaymentRepository creates a new MockPlannedPaymentRepository
func NewMockPlannedPaymentRepository() *MockPlannedPaymentRepository {
	return &MockPlannedPaymentRepository{
		Payments: make(map[int32]*domain.PlannedPayment),
		NextID:   1,
	}
}

// Create creates a new planned payment
func (m *MockPlannedPaymentRepository) Create(payment *domain.PlannedPayment) (*domain.PlannedPayment, error) {
	payment.ID = m.NextID
	m.NextID++
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByID retrieves a planned payment by ID
func (m *MockPlannedPaymentRepository) GetByID(id int32) (*domain.PlannedPayment, error) {
	if payment, ok := m.Payments[id]; ok {
		return payment, nil
	}
	return nil, domain.ErrPlannedPaymentNotFound
}

// GetAll retrieves all planned payments
func (m *MockPlannedPaymentRepository) GetAll() ([]*domain.PlannedPayment, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn()
	}
	var payments []*domain.PlannedPayment
	for _, payment := range m.Payments {
		payments = append(payments, payment)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

// Update updates an existing planned payment
func (m *MockPlannedPaymentRepository) Update(payment *domain.PlannedPayment) (*domain.PlannedPayment, error) {
	if _, ok := m.Payments[payment.ID]; !ok {
		return nil, domain.ErrPlannedPaymentNotFound
	}
	payment.UpdatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// SetLastProcessed moves the payment's watermark
func (m *MockPlannedPaymentRepository) SetLastProcessed(id int32, lastProcessed time.Time) error {
	if m.SetLastProcessedFn != nil {
		return m.SetLastProcessedFn(id, lastProcessed)
	}
	payment, ok := m.Payments[id]
	if !ok {
		return domain.ErrPlannedPaymentNotFound
	}
	payment.LastProcessedDate = &lastProcessed
	payment.UpdatedAt = time.Now()
	return nil
}

// Delete removes a planned payment
func (m *MockPlannedPaymentRepository) Delete(id int32) error {
	if _, ok := m.Payments[id]; !ok {
		return domain.ErrPlannedPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

// AddPayment adds a planned payment to the mock repository (helper for tests)
func (m *MockPlannedPaymentRepository) AddPayment(payment *domain.PlannedPayment) {
	m.Payments[payment.ID] = payment
	if payment.ID >= m.NextID {
		m.NextID = payment.ID + 1
	}
}

// MockRecurringHistoryRepository is a mock implementation of domain.RecurringHistoryRepository
type MockRecurringHistoryRepository struct {
	Records  map[int32]*domain.RecurringHistory
	NextID   int32
	CreateFn func(record *domain.RecurringHistory) (*domain.RecurringHistory, error)
	GetFn    func(plannedPaymentID int32) ([]*domain.RecurringHistory, error)
}

// NewMockRecurringHistoryRepository creates a new MockRecurringHistoryRepository
func NewMockRecurringHistoryRepository() *MockRecurringHistoryRepository {
	return &MockRecurringHistoryRepository{
		Records: make(map[int32]*domain.RecurringHistory),
		NextID:  1,
	}
}

// Create inserts a history record, rejecting duplicates for the same
// payment and scheduled date like the database unique constraint would.
func (m *MockRecurringHistoryRepository) Create(record *domain.RecurringHistory) (*domain.RecurringHistory, error) {
	if m.CreateFn != nil {
		return m.CreateFn(record)
	}
	for _, existing := range m.Records {
		if existing.PlannedPaymentID == record.PlannedPaymentID && existing.ScheduledDate.Equal(record.ScheduledDate) {
			return nil, domain.ErrDuplicateOccurrence
		}
	}
	record.ID = m.NextID
	m.NextID++
	record.CreatedDate = time.Now()
	m.Records[record.ID] = record
	return record, nil
}

// GetByPlannedPaymentID retrieves history records for a planned payment
func (m *MockRecurringHistoryRepository) GetByPlannedPaymentID(plannedPaymentID int32) ([]*domain.RecurringHistory, error) {
	if m.GetFn != nil {
		return m.GetFn(plannedPaymentID)
	}
	var records []*domain.RecurringHistory
	for _, record := range m.Records {
		if record.PlannedPaymentID == plannedPaymentID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ScheduledDate.Before(records[j].ScheduledDate) })
	return records, nil
}

// DeleteByPlannedPaymentID removes all history records for a planned payment
func (m *MockRecurringHistoryRepository) DeleteByPlannedPaymentID(plannedPaymentID int32) error {
	for id, record := range m.Records {
		if record.PlannedPaymentID == plannedPaymentID {
			delete(m.Records, id)
		}
	}
	return nil
}

// MockExchangeRateRepository is a mock implementation of domain.ExchangeRateRepository
type MockExchangeRateRepository struct {
	Rates map[string]*domain.ExchangeRate
}

// NewMockExchangeRateRepository creates a new MockExchangeRateRepository
func NewMockExchangeRateRepository() *MockExchangeRateRepository {
	return &MockExchangeRateRepository{
		Rates: make(map[string]*domain.ExchangeRate),
	}
}

func rateKey(baseCurrency, currency string) string {
	return baseCurrency + "/" + currency
}

// Upsert stores or overwrites a rate
func (m *MockExchangeRateRepository) Upsert(rate *domain.ExchangeRate) (*domain.ExchangeRate, error) {
	rate.UpdatedAt = time.Now()
	m.Rates[rateKey(rate.BaseCurrency, rate.Currency)] = rate
	return rate, nil
}

// GetByPair retrieves the rate for a currency pair
func (m *MockExchangeRateRepository) GetByPair(baseCurrency, currency string) (*domain.ExchangeRate, error) {
	if rate, ok := m.Rates[rateKey(baseCurrency, currency)]; ok {
		return rate, nil
	}
	return nil, domain.ErrExchangeRateNotFound
}

// GetByBase retrieves all rates for a base currency
func (m *MockExchangeRateRepository) GetByBase(baseCurrency string) ([]*domain.ExchangeRate, error) {
	var rates []*domain.ExchangeRate
	for _, rate := range m.Rates {
		if rate.BaseCurrency == baseCurrency {
			rates = append(rates, rate)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Currency < rates[j].Currency })
	return rates, nil
}
