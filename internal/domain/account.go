package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an account is created without an explicit currency
const DefaultCurrency = "USD"

type Account struct {
	ID             int32           `json:"id"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	Color          *string         `json:"color,omitempty"`
	Icon           *string         `json:"icon,omitempty"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	OrderNum       int32           `json:"orderNum"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(id int32) (*Account, error)
	GetAll(includeArchived bool) ([]*Account, error)
	Update(account *Account) (*Account, error)
	SoftDelete(id int32) error
}
