package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type Transaction struct {
	ID          int32           `json:"id"`
	AccountID   int32           `json:"accountId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	CategoryID  *int32          `json:"categoryId,omitempty"`
	// DateTime is the logical date of the transaction. For materialized
	// recurring transactions this is the scheduled occurrence date, not the
	// wall-clock creation time.
	DateTime         time.Time  `json:"dateTime"`
	PlannedPaymentID *int32     `json:"plannedPaymentId,omitempty"`
	TransferPairID   *uuid.UUID `json:"transferPairId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
}

type TransactionFilters struct {
	AccountID  *int32
	CategoryID *int32
	Type       *TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransferResult struct {
	From *Transaction `json:"from"`
	To   *Transaction `json:"to"`
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(id int32) (*Transaction, error)
	GetFiltered(filters *TransactionFilters) (*PaginatedTransactions, error)
	Update(transaction *Transaction) (*Transaction, error)
	SoftDelete(id int32) error
	CreateTransferPair(fromTx, toTx *Transaction) (*TransferResult, error)
	SoftDeleteTransferPair(pairID uuid.UUID) error
}
