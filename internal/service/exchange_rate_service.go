package service

import (
	"strings"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateService handles currency exchange rate logic
type ExchangeRateService struct {
	rateRepo domain.ExchangeRateRepository
}

// NewExchangeRateService creates a new ExchangeRateService
func NewExchangeRateService(rateRepo domain.ExchangeRateRepository) *ExchangeRateService {
	return &ExchangeRateService{rateRepo: rateRepo}
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SetRate stores or overwrites the rate for a currency pair
func (s *ExchangeRateService) SetRate(baseCurrency, currency string, rate decimal.Decimal) (*domain.ExchangeRate, error) {
	baseCurrency = normalizeCurrency(baseCurrency)
	currency = normalizeCurrency(currency)
	if baseCurrency == "" || currency == "" {
		return nil, domain.ErrInvalidInput
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	return s.rateRepo.Upsert(&domain.ExchangeRate{
		BaseCurrency: baseCurrency,
		Currency:     currency,
		Rate:         rate,
	})
}

// GetRates returns all stored rates for a base currency
func (s *ExchangeRateService) GetRates(baseCurrency string) ([]*domain.ExchangeRate, error) {
	baseCurrency = normalizeCurrency(baseCurrency)
	if baseCurrency == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.rateRepo.GetByBase(baseCurrency)
}

// Convert converts an amount between two currencies using stored rates. The
// identity conversion needs no stored rate.
func (s *ExchangeRateService) Convert(amount decimal.Decimal, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	fromCurrency = normalizeCurrency(fromCurrency)
	toCurrency = normalizeCurrency(toCurrency)

	if fromCurrency == toCurrency {
		return amount, nil
	}

	rate, err := s.rateRepo.GetByPair(fromCurrency, toCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate.Rate), nil
}
