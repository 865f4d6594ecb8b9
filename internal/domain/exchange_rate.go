package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate holds the rate from BaseCurrency to Currency, keyed by the pair.
type ExchangeRate struct {
	BaseCurrency string          `json:"baseCurrency"`
	Currency     string          `json:"currency"`
	Rate         decimal.Decimal `json:"rate"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type ExchangeRateRepository interface {
	Upsert(rate *ExchangeRate) (*ExchangeRate, error)
	GetByPair(baseCurrency, currency string) (*ExchangeRate, error)
	GetByBase(baseCurrency string) ([]*ExchangeRate, error)
}
